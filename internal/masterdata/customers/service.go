package customers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Customer, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, customer Customer) (Customer, error) {
	if err := s.validate(customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, customer)
}

func (s *Service) Update(ctx context.Context, id int64, customer Customer) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	if err := s.validate(customer); err != nil {
		return Customer{}, err
	}
	if err := s.repo.Update(ctx, id, customer); err != nil {
		return Customer{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(c Customer) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("customer first and last name are required: %w", shared.ErrValidation)
	}
	if c.CompanyID <= 0 {
		return fmt.Errorf("company is required: %w", shared.ErrValidation)
	}
	return nil
}
