package inventory

import (
	"errors"
	"time"
)

// MovementType enumerates supported stock movements.
type MovementType string

const (
	// MovementAddition adds the movement quantity to the ledger.
	MovementAddition MovementType = "ADDITION"
	// MovementSubtraction removes the movement quantity from the ledger.
	MovementSubtraction MovementType = "SUBTRACTION"
	// MovementAdjustment overwrites the ledger quantity with an absolute count.
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementAddition, MovementSubtraction, MovementAdjustment:
		return true
	}
	return false
}

// Record is the authoritative stock counter for one product. The quantity is
// never negative; one record exists per product and is created lazily on the
// first stock-increasing event.
type Record struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	Quantity     int64     `json:"quantity"`
	ReorderLevel int64     `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Movement is an append-only audit record describing how a ledger change came
// about. Rows are immutable once written.
type Movement struct {
	ID             int64        `json:"id"`
	ProductID      int64        `json:"product_id"`
	Type           MovementType `json:"movement_type"`
	QuantityChange int64        `json:"quantity_change"`
	Reference      string       `json:"reference,omitempty"`
	PerformedBy    int64        `json:"performed_by,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// MovementInput describes a requested stock movement.
type MovementInput struct {
	ProductID      int64
	Type           MovementType
	QuantityChange int64
	Reference      string
	PerformedBy    int64
}

// MovementResult pairs the persisted movement with the resulting quantity.
type MovementResult struct {
	Movement Movement `json:"movement"`
	Quantity int64    `json:"quantity"`
}

// CreateRecordInput describes a manually created inventory record.
type CreateRecordInput struct {
	ProductID    int64
	Quantity     int64
	ReorderLevel int64
}

// ListFilter narrows inventory listings.
type ListFilter struct {
	LowStockOnly bool
	Page         int
	PerPage      int
}

// LowStockAlert is raised when a record's quantity is at or below its reorder
// threshold.
type LowStockAlert struct {
	ProductID    int64 `json:"product_id"`
	Quantity     int64 `json:"quantity"`
	ReorderLevel int64 `json:"reorder_level"`
}

var (
	// ErrRecordNotFound indicates no inventory record exists for the product.
	ErrRecordNotFound = errors.New("inventory: record not found")
	// ErrInsufficientStock triggered when a movement would drive quantity negative.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrInvalidMovement indicates an invalid movement type or quantity.
	ErrInvalidMovement = errors.New("inventory: invalid movement")
)
