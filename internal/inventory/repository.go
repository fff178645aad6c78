package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-retail/meridian/internal/platform/db"
	"github.com/meridian-retail/meridian/internal/shared"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewTxRepository binds ledger operations to an existing transaction. Used by
// the sales and purchasing repositories so that their workflows mutate the
// ledger inside their own atomic unit.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
// Serialization failures surface as shared.ErrConcurrencyConflict.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	return mapStorageErr(err)
}

func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsSerializationFailure(err):
		return fmt.Errorf("inventory: %w", shared.ErrConcurrencyConflict)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("inventory: %w", shared.ErrDuplicate)
	}
	return err
}

// GetByProduct loads a record without locking it.
func (r *Repository) GetByProduct(ctx context.Context, productID int64) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, quantity, reorder_level, created_at, updated_at
FROM inventory_records WHERE product_id=$1`, productID).
		Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("product %d: %w", productID, ErrRecordNotFound)
		}
		return Record{}, err
	}
	return rec, nil
}

// List returns records matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	where := ""
	if filter.LowStockOnly {
		where = " WHERE quantity <= reorder_level"
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_records`+where).Scan(&total); err != nil {
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

	rows, err := r.pool.Query(ctx, `SELECT id, product_id, quantity, reorder_level, created_at, updated_at
FROM inventory_records`+where+` ORDER BY product_id ASC LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

// ListMovements returns a product's movement trail, newest first.
func (r *Repository) ListMovements(ctx context.Context, productID int64, limit int) ([]Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT id, product_id, movement_type, quantity_change, reference, performed_by, created_at
FROM stock_movements WHERE product_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []Movement{}
	for rows.Next() {
		var m Movement
		var reference *string
		var performedBy *int64
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.QuantityChange, &reference, &performedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		if reference != nil {
			m.Reference = *reference
		}
		if performedBy != nil {
			m.PerformedBy = *performedBy
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// UpdateReorderLevel sets a record's reorder threshold.
func (r *Repository) UpdateReorderLevel(ctx context.Context, productID, reorderLevel int64) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `UPDATE inventory_records SET reorder_level=$1, updated_at=NOW()
WHERE product_id=$2 RETURNING id, product_id, quantity, reorder_level, created_at, updated_at`, reorderLevel, productID).
		Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("product %d: %w", productID, ErrRecordNotFound)
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *txRepository) GetRecordForUpdate(ctx context.Context, productID int64) (Record, error) {
	var rec Record
	err := r.tx.QueryRow(ctx, `SELECT id, product_id, quantity, reorder_level, created_at, updated_at
FROM inventory_records WHERE product_id=$1 FOR UPDATE`, productID).
		Scan(&rec.ID, &rec.ProductID, &rec.Quantity, &rec.ReorderLevel, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, fmt.Errorf("product %d: %w", productID, ErrRecordNotFound)
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *txRepository) InsertRecord(ctx context.Context, record Record) (Record, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO inventory_records (product_id, quantity, reorder_level, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		record.ProductID, record.Quantity, record.ReorderLevel).
		Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (r *txRepository) UpdateRecordQuantity(ctx context.Context, recordID, quantity int64, updatedAt time.Time) error {
	tag, err := r.tx.Exec(ctx, `UPDATE inventory_records SET quantity=$1, updated_at=$2 WHERE id=$3`, quantity, updatedAt, recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %d: %w", recordID, ErrRecordNotFound)
	}
	return nil
}

func (r *txRepository) InsertMovement(ctx context.Context, movement Movement) (Movement, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_movements (product_id, movement_type, quantity_change, reference, performed_by, created_at)
VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`,
		movement.ProductID, string(movement.Type), movement.QuantityChange, nullString(movement.Reference), nullInt(movement.PerformedBy)).
		Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
