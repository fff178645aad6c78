package payments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Payment, int, error)
	Get(ctx context.Context, id int64) (Payment, error)
	Create(ctx context.Context, payment Payment) (Payment, error)
	Update(ctx context.Context, id int64, payment Payment) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const paymentColumns = `id, sale_id, amount, payment_method, payment_reference, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	filter.Normalize()

	where := ` WHERE 1=1`
	args := []any{}
	if filter.SaleID != nil {
		args = append(args, *filter.SaleID)
		where += ` AND sale_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments`+where+
		` ORDER BY created_at DESC LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.SaleID, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, payment Payment) (Payment, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO payments (sale_id, amount, payment_method, payment_reference, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`,
		payment.SaleID, payment.Amount, payment.Method, payment.Reference, now).
		Scan(&payment.ID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Payment{}, ErrSaleNotFound
		}
		return Payment{}, err
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	return payment, nil
}

func (r *repository) Update(ctx context.Context, id int64, payment Payment) error {
	tag, err := r.db.Exec(ctx, `UPDATE payments SET amount = $1, payment_method = $2, payment_reference = $3, updated_at = $4 WHERE id = $5`,
		payment.Amount, payment.Method, payment.Reference, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
