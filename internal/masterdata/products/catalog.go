package products

import (
	"context"

	"github.com/meridian-retail/meridian/internal/inventory"
)

// Catalog adapts the product service to the lookup interface the inventory
// module uses for report enrichment.
type Catalog struct {
	service *Service
}

// NewCatalog builds the adapter.
func NewCatalog(service *Service) *Catalog {
	return &Catalog{service: service}
}

// Lookup resolves a product into the inventory module's view of it.
func (c *Catalog) Lookup(ctx context.Context, productID int64) (inventory.ProductInfo, error) {
	p, err := c.service.Get(ctx, productID)
	if err != nil {
		return inventory.ProductInfo{}, err
	}
	info := inventory.ProductInfo{ID: p.ID, Name: p.Name}
	if p.SKU != nil {
		info.SKU = *p.SKU
	}
	return info, nil
}
