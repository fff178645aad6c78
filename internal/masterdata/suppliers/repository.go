package suppliers

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
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const supplierColumns = `id, company_id, name, contact_person, email, phone, address, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
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
		where += ` AND (name ILIKE $` + n + ` OR contact_person ILIKE $` + n + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers`+where+
		` ORDER BY name ASC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.CompanyID, &s.Name, &s.ContactPerson, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, shared.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO suppliers (company_id, name, contact_person, email, phone, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		supplier.CompanyID, supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, now).
		Scan(&supplier.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Supplier{}, shared.ErrDuplicate
		}
		return Supplier{}, err
	}
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.db.Exec(ctx, `UPDATE suppliers SET name = $1, contact_person = $2, email = $3, phone = $4, address = $5, updated_at = $6 WHERE id = $7`,
		supplier.Name, supplier.ContactPerson, supplier.Email, supplier.Phone, supplier.Address, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
