package customers

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
	List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, customer Customer) (Customer, error)
	Update(ctx context.Context, id int64, customer Customer) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const customerColumns = `id, company_id, first_name, last_name, email, phone, address, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	filters.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if filters.CompanyID != nil {
		args = append(args, *filters.CompanyID)
		where += ` AND company_id = $` + strconv.Itoa(len(args))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (first_name ILIKE $` + n + ` OR last_name ILIKE $` + n + ` OR email ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers`+where+
		` ORDER BY last_name ASC, first_name ASC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, shared.ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, customer Customer) (Customer, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO customers (company_id, first_name, last_name, email, phone, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		customer.CompanyID, customer.FirstName, customer.LastName, customer.Email, customer.Phone, customer.Address, now).
		Scan(&customer.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Customer{}, shared.ErrDuplicate
		}
		return Customer{}, err
	}
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return customer, nil
}

func (r *repository) Update(ctx context.Context, id int64, customer Customer) error {
	tag, err := r.db.Exec(ctx, `UPDATE customers SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, updated_at = $6 WHERE id = $7`,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone, customer.Address, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
