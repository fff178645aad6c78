package categories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, id int64, category Category) (Category, error) {
	if id <= 0 {
		return Category{}, shared.ErrInvalidID
	}
	if err := s.validate(category); err != nil {
		return Category{}, err
	}
	if err := s.repo.Update(ctx, id, category); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is required: %w", shared.ErrValidation)
	}
	if c.CompanyID <= 0 {
		return fmt.Errorf("company is required: %w", shared.ErrValidation)
	}
	return nil
}
