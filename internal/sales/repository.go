package sales

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/platform/db"
	"github.com/meridian-retail/meridian/internal/shared"
)

// Repository persists sales data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the writes available inside a fulfillment transaction.
// Inventory returns a ledger view bound to the same transaction, so header,
// items and stock decrements commit or roll back together.
type TxRepository interface {
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
	InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error)
	Inventory() inventory.TxRepository
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return mapTxErr(db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	}))
}

// mapTxErr translates storage-level serialization failures into the retryable
// conflict error callers are expected to handle.
func mapTxErr(err error) error {
	if err != nil && db.IsSerializationFailure(err) {
		return fmt.Errorf("sales: %w", shared.ErrConcurrencyConflict)
	}
	return err
}

func (t *txRepo) Inventory() inventory.TxRepository {
	return inventory.NewTxRepository(t.tx)
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO sales (customer_id, user_id, status, subtotal, tax_amount, total_amount, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		sale.CustomerID, sale.UserID, string(sale.Status), sale.Subtotal, sale.TaxAmount, sale.TotalAmount, sale.Notes).
		Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (t *txRepo) InsertSaleItem(ctx context.Context, item SaleItem) (SaleItem, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, tax_amount, subtotal)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.TaxAmount, item.Subtotal).
		Scan(&item.ID)
	if err != nil {
		return SaleItem{}, err
	}
	return item, nil
}

// Get loads a sale together with its items.
func (r *Repository) Get(ctx context.Context, id int64) (*Sale, error) {
	var sale Sale
	err := r.pool.QueryRow(ctx, `SELECT id, customer_id, user_id, status, subtotal, tax_amount, total_amount, notes, created_at, updated_at
FROM sales WHERE id=$1`, id).
		Scan(&sale.ID, &sale.CustomerID, &sale.UserID, &sale.Status, &sale.Subtotal, &sale.TaxAmount, &sale.TotalAmount, &sale.Notes, &sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sale %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, sale_id, product_id, quantity, unit_price, tax_amount, subtotal
FROM sale_items WHERE sale_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TaxAmount, &item.Subtotal); err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sale, nil
}

// List returns sales matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListSalesFilter) ([]Sale, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += " AND status=$" + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += " AND created_at >= $" + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += " AND created_at < $" + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, perPage, (page-1)*perPage)
	query := `SELECT id, customer_id, user_id, status, subtotal, tax_amount, total_amount, notes, created_at, updated_at
FROM sales` + where + ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sales := []Sale{}
	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.UserID, &sale.Status, &sale.Subtotal, &sale.TaxAmount, &sale.TotalAmount, &sale.Notes, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sales = append(sales, sale)
	}
	return sales, total, rows.Err()
}
