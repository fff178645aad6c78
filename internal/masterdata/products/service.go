package products

import (
	"context"
	"fmt"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
)

type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.cache.Fetch(ctx, id, func(ctx context.Context) (Product, error) {
		return s.repo.Get(ctx, id)
	})
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, id, product); err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx, id)
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *Service) validate(p Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required: %w", shared.ErrValidation)
	}
	if p.CompanyID <= 0 {
		return fmt.Errorf("company is required: %w", shared.ErrValidation)
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must be >= 0: %w", shared.ErrValidation)
	}
	return nil
}
