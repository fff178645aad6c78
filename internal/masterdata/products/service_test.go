package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
	gets     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	r.gets++
	if p, ok := r.products[id]; ok {
		return p, nil
	}
	return Product{}, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, product Product) (Product, error) {
	r.nextID++
	product.ID = r.nextID
	r.products[product.ID] = product
	return product, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, product Product) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	product.ID = id
	r.products[id] = product
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestServiceValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Product{CompanyID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Product{Name: "Widget"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, Product{CompanyID: 1, Name: "Widget", UnitPrice: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, shared.ErrValidation)

	p, err := svc.Create(ctx, Product{CompanyID: 1, Name: "Widget", UnitPrice: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	_, err = svc.Get(ctx, 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestServiceGetUsesCache(t *testing.T) {
	repo := newMemoryRepo()
	cache := newTestCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	p, err := svc.Create(ctx, Product{CompanyID: 1, Name: "Widget", UnitPrice: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.gets)

	// Updates invalidate, so the next read goes back to the repository.
	_, err = svc.Update(ctx, p.ID, Product{CompanyID: 1, Name: "Widget v2", UnitPrice: decimal.NewFromInt(6)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Widget v2", got.Name)
}
