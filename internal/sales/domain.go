package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("sale not found")
	ErrInvalidStatus = errors.New("invalid sale status")
	ErrEmptySale     = errors.New("sale requires at least one item")
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusRefunded:
		return true
	}
	return false
}

type Sale struct {
	ID          int64           `json:"id" db:"id"`
	CustomerID  *int64          `json:"customer_id,omitempty" db:"customer_id"`
	UserID      *int64          `json:"user_id,omitempty" db:"user_id"`
	Status      SaleStatus      `json:"status" db:"status"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Items       []SaleItem      `json:"items,omitempty" db:"-"`
}

type SaleItem struct {
	ID        int64           `json:"id" db:"id"`
	SaleID    int64           `json:"sale_id" db:"sale_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int64           `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxAmount decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// FulfillSaleInput carries the header fields plus the ordered line items.
// Item order is significant: lines are fulfilled strictly in the order
// supplied.
type FulfillSaleInput struct {
	CustomerID *int64
	UserID     *int64
	Status     SaleStatus
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Notes      *string
	Items      []FulfillSaleItem
}

type FulfillSaleItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	TaxAmount decimal.Decimal
	Subtotal  decimal.Decimal
}

type ListSalesFilter struct {
	Status  *SaleStatus
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}
