package purchasing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("purchase order not found")
	ErrAlreadyReceived = errors.New("purchase order already received")
	ErrNotReceivable   = errors.New("purchase order is not receivable")
	ErrInvalidState    = errors.New("invalid purchase order state")
	ErrEmptyOrder      = errors.New("purchase order requires at least one item")
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusReceived OrderStatus = "RECEIVED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type PurchaseOrder struct {
	ID               int64               `json:"id" db:"id"`
	SupplierID       *int64              `json:"supplier_id,omitempty" db:"supplier_id"`
	Status           OrderStatus         `json:"status" db:"status"`
	ExpectedDelivery *time.Time          `json:"expected_delivery_date,omitempty" db:"expected_delivery_date"`
	TotalAmount      decimal.Decimal     `json:"total_amount" db:"total_amount"`
	Notes            *string             `json:"notes,omitempty" db:"notes"`
	CreatedBy        *int64              `json:"created_by,omitempty" db:"created_by"`
	ReceivedAt       *time.Time          `json:"received_at,omitempty" db:"received_at"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
	Items            []PurchaseOrderItem `json:"items,omitempty" db:"-"`
}

// PurchaseOrderItem is one ordered line. ProductID is nullable: lines without
// a linked product (services, fees) are skipped during receipt.
type PurchaseOrderItem struct {
	ID              int64           `json:"id" db:"id"`
	PurchaseOrderID int64           `json:"purchase_order_id" db:"purchase_order_id"`
	ProductID       *int64          `json:"product_id,omitempty" db:"product_id"`
	Quantity        int64           `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
}

type CreateOrderInput struct {
	SupplierID       *int64
	ExpectedDelivery *time.Time
	TotalAmount      decimal.Decimal
	Notes            *string
	CreatedBy        *int64
	Items            []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID *int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type ListOrdersFilter struct {
	Status  *OrderStatus
	Page    int
	PerPage int
}
