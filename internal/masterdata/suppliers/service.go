package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-retail/meridian/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, supplier Supplier) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	if err := s.repo.Update(ctx, id, supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("supplier name is required: %w", shared.ErrValidation)
	}
	if sup.CompanyID <= 0 {
		return fmt.Errorf("company is required: %w", shared.ErrValidation)
	}
	return nil
}
