package companies

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
	"github.com/meridian-retail/meridian/internal/platform/db"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Company, error)
	GetByName(ctx context.Context, name string) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const companyColumns = `id, name, email, phone, address, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	return r.getWhere(ctx, `id = $1`, id)
}

func (r *repository) GetByName(ctx context.Context, name string) (Company, error) {
	return r.getWhere(ctx, `name = $1`, name)
}

func (r *repository) getWhere(ctx context.Context, cond string, arg any) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE `+cond, arg).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO companies (name, email, phone, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		company.Name, company.Email, company.Phone, company.Address, now).
		Scan(&company.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Company{}, shared.ErrDuplicate
		}
		return Company{}, err
	}
	company.CreatedAt = now
	company.UpdatedAt = now
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	tag, err := r.db.Exec(ctx, `UPDATE companies SET name = $1, email = $2, phone = $3, address = $4, updated_at = $5 WHERE id = $6`,
		company.Name, company.Email, company.Phone, company.Address, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
