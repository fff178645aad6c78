package payments

import (
	"context"
	"fmt"

	"github.com/meridian-retail/meridian/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	if id <= 0 {
		return Payment{}, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, payment Payment) (Payment, error) {
	if err := s.validate(payment); err != nil {
		return Payment{}, err
	}
	return s.repo.Create(ctx, payment)
}

// Update replaces the mutable fields of an existing payment. The sale link is
// immutable: a payment stays attached to the sale it settled.
func (s *Service) Update(ctx context.Context, id int64, payment Payment) (Payment, error) {
	if id <= 0 {
		return Payment{}, ErrNotFound
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	payment.SaleID = existing.SaleID
	if err := s.validate(payment); err != nil {
		return Payment{}, err
	}
	if err := s.repo.Update(ctx, id, payment); err != nil {
		return Payment{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(p Payment) error {
	if p.SaleID <= 0 {
		return fmt.Errorf("sale is required: %w", shared.ErrValidation)
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive: %w", shared.ErrValidation)
	}
	if !p.Method.Valid() {
		return ErrInvalidMethod
	}
	return nil
}
