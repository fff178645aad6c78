package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TxRepository exposes the ledger storage operations available inside a
// transaction. Implementations must lock the record row for the duration of
// the transaction so concurrent mutations of the same product serialize.
type TxRepository interface {
	GetRecordForUpdate(ctx context.Context, productID int64) (Record, error)
	InsertRecord(ctx context.Context, record Record) (Record, error)
	UpdateRecordQuantity(ctx context.Context, recordID, quantity int64, updatedAt time.Time) error
	InsertMovement(ctx context.Context, movement Movement) (Movement, error)
}

// The ledger functions below run inside the caller's transaction; they never
// open their own. All three mutation paths (movements, sale fulfillment,
// purchase order receipt) go through them.

// ReadRecord loads and locks the record for productID.
func ReadRecord(ctx context.Context, tx TxRepository, productID int64) (Record, error) {
	return tx.GetRecordForUpdate(ctx, productID)
}

// ApplyDelta adds delta (which may be negative) to the product's quantity.
// A record is created lazily when none exists and delta is positive; a
// negative delta against a missing record fails with ErrRecordNotFound, and a
// delta that would drive the quantity below zero fails with
// ErrInsufficientStock.
func ApplyDelta(ctx context.Context, tx TxRepository, productID, delta int64) (Record, error) {
	record, err := tx.GetRecordForUpdate(ctx, productID)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return Record{}, err
		}
		if delta < 0 {
			return Record{}, fmt.Errorf("product %d: %w", productID, ErrRecordNotFound)
		}
		return tx.InsertRecord(ctx, Record{ProductID: productID, Quantity: delta})
	}

	newQty := record.Quantity + delta
	if newQty < 0 {
		return Record{}, fmt.Errorf("product %d has %d, need %d: %w", productID, record.Quantity, -delta, ErrInsufficientStock)
	}

	now := time.Now().UTC()
	if err := tx.UpdateRecordQuantity(ctx, record.ID, newQty, now); err != nil {
		return Record{}, err
	}
	record.Quantity = newQty
	record.UpdatedAt = now
	return record, nil
}

// SetAbsolute overwrites the product's quantity unconditionally, creating the
// record when none exists. Negative targets are rejected.
func SetAbsolute(ctx context.Context, tx TxRepository, productID, quantity int64) (Record, error) {
	if quantity < 0 {
		return Record{}, fmt.Errorf("target quantity %d: %w", quantity, ErrInvalidMovement)
	}

	record, err := tx.GetRecordForUpdate(ctx, productID)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			return Record{}, err
		}
		return tx.InsertRecord(ctx, Record{ProductID: productID, Quantity: quantity})
	}

	now := time.Now().UTC()
	if err := tx.UpdateRecordQuantity(ctx, record.ID, quantity, now); err != nil {
		return Record{}, err
	}
	record.Quantity = quantity
	record.UpdatedAt = now
	return record, nil
}
