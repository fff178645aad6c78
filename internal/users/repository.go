package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/platform/db"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, filter ListUsersFilter) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id int64) error
}

// Repository is the PostgreSQL implementation.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, full_name, username, email, role, password_hash, is_active, created_at, updated_at`

func (r *Repository) List(ctx context.Context, filter ListUsersFilter) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if filter.Role != nil {
		query += ` WHERE role = $1`
		args = append(args, string(*filter.Role))
	}
	query += ` ORDER BY id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return User{}, err
	}
	return u, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *Repository) Create(ctx context.Context, user User) (User, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (full_name, username, email, role, password_hash, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		user.FullName, user.Username, user.Email, string(user.Role), user.PasswordHash, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return User{}, err
	}
	return user, nil
}

func (r *Repository) Update(ctx context.Context, user User) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET full_name = $1, username = $2, email = $3, role = $4, password_hash = $5, is_active = $6, updated_at = NOW() WHERE id = $7`,
		user.FullName, user.Username, user.Email, string(user.Role), user.PasswordHash, user.IsActive, user.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.Role, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
