package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/inventory"
	"github.com/meridian-retail/meridian/internal/platform/db"
	"github.com/meridian-retail/meridian/internal/shared"
)

// Repository persists purchase orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the writes available inside a purchasing transaction.
// Inventory returns a ledger view bound to the same transaction so that the
// status transition and the stock credits commit or roll back together.
type TxRepository interface {
	InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	InsertOrderItem(ctx context.Context, item PurchaseOrderItem) (PurchaseOrderItem, error)
	GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus, receivedAt *time.Time) error
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
		return fmt.Errorf("purchasing: %w", shared.ErrConcurrencyConflict)
	}
	return err
}

func (t *txRepo) Inventory() inventory.TxRepository {
	return inventory.NewTxRepository(t.tx)
}

func (t *txRepo) InsertOrder(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_orders (supplier_id, status, expected_delivery_date, total_amount, notes, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		order.SupplierID, string(order.Status), order.ExpectedDelivery, order.TotalAmount, order.Notes, order.CreatedBy).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return PurchaseOrder{}, err
	}
	return order, nil
}

func (t *txRepo) InsertOrderItem(ctx context.Context, item PurchaseOrderItem) (PurchaseOrderItem, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		item.PurchaseOrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).
		Scan(&item.ID)
	if err != nil {
		return PurchaseOrderItem{}, err
	}
	return item, nil
}

func (t *txRepo) GetOrderForUpdate(ctx context.Context, id int64) (PurchaseOrder, error) {
	var order PurchaseOrder
	err := t.tx.QueryRow(ctx, `SELECT id, supplier_id, status, expected_delivery_date, total_amount, notes, created_by, received_at, created_at, updated_at
FROM purchase_orders WHERE id=$1 FOR UPDATE`, id).
		Scan(&order.ID, &order.SupplierID, &order.Status, &order.ExpectedDelivery, &order.TotalAmount, &order.Notes, &order.CreatedBy, &order.ReceivedAt, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
		}
		return PurchaseOrder{}, err
	}

	items, err := scanOrderItems(ctx, t.tx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.Items = items
	return order, nil
}

func (t *txRepo) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus, receivedAt *time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchase_orders SET status=$1, received_at=COALESCE($2, received_at), updated_at=NOW() WHERE id=$3`,
		string(status), receivedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanOrderItems(ctx context.Context, q querier, orderID int64) ([]PurchaseOrderItem, error) {
	rows, err := q.Query(ctx, `SELECT id, purchase_order_id, product_id, quantity, unit_price, subtotal
FROM purchase_order_items WHERE purchase_order_id=$1 ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PurchaseOrderItem
	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get loads an order together with its items.
func (r *Repository) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	var order PurchaseOrder
	err := r.pool.QueryRow(ctx, `SELECT id, supplier_id, status, expected_delivery_date, total_amount, notes, created_by, received_at, created_at, updated_at
FROM purchase_orders WHERE id=$1`, id).
		Scan(&order.ID, &order.SupplierID, &order.Status, &order.ExpectedDelivery, &order.TotalAmount, &order.Notes, &order.CreatedBy, &order.ReceivedAt, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase order %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	items, err := scanOrderItems(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

// List returns orders matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListOrdersFilter) ([]PurchaseOrder, int, error) {
	where := ""
	args := []any{}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = " WHERE status=$1"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`+where, args...).Scan(&total); err != nil {
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
	query := `SELECT id, supplier_id, status, expected_delivery_date, total_amount, notes, created_by, received_at, created_at, updated_at
FROM purchase_orders` + where + ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []PurchaseOrder{}
	for rows.Next() {
		var order PurchaseOrder
		if err := rows.Scan(&order.ID, &order.SupplierID, &order.Status, &order.ExpectedDelivery, &order.TotalAmount, &order.Notes, &order.CreatedBy, &order.ReceivedAt, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, rows.Err()
}
