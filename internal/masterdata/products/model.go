package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable product
type Product struct {
	ID          int64            `json:"id"`
	CompanyID   int64            `json:"company_id"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	SupplierID  *int64           `json:"supplier_id,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
