package payments

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Method is how the customer settled a sale.
type Method string

const (
	MethodCash          Method = "CASH"
	MethodCreditCard    Method = "CREDIT_CARD"
	MethodDebitCard     Method = "DEBIT_CARD"
	MethodMobilePayment Method = "MOBILE_PAYMENT"
	MethodOther         Method = "OTHER"
)

// Valid reports whether m is a known payment method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCreditCard, MethodDebitCard, MethodMobilePayment, MethodOther:
		return true
	}
	return false
}

// Payment records a settlement against a sale. A sale may carry several
// payments (split tender).
type Payment struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    Method          `json:"payment_method"`
	Reference *string         `json:"payment_reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ListFilter narrows payment listings.
type ListFilter struct {
	SaleID *int64
	Page   int
	Limit  int
}

// Normalize clamps pagination to sane defaults.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

var (
	// ErrNotFound indicates the payment does not exist.
	ErrNotFound = errors.New("payment not found")
	// ErrSaleNotFound indicates the referenced sale does not exist.
	ErrSaleNotFound = errors.New("sale not found for payment")
	// ErrInvalidMethod indicates an unknown payment method.
	ErrInvalidMethod = errors.New("invalid payment method")
)
