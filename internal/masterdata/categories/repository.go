package categories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
	"github.com/meridian-retail/meridian/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	filters.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if filters.CompanyID != nil {
		args = append(args, *filters.CompanyID)
		where += ` AND company_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)
	rows, err := r.db.Query(ctx, `SELECT id, company_id, name, description, created_at, updated_at FROM categories`+where+
		` ORDER BY name ASC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, `SELECT id, company_id, name, description, created_at, updated_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, shared.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO categories (company_id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		category.CompanyID, category.Name, category.Description, now).
		Scan(&category.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Category{}, shared.ErrDuplicate
		}
		return Category{}, err
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	return category, nil
}

func (r *repository) Update(ctx context.Context, id int64, category Category) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		category.Name, category.Description, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
