package companies

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

// Get resolves a company by ID or, when id is zero, by exact name.
func (s *Service) Get(ctx context.Context, id int64, name string) (Company, error) {
	if id > 0 {
		return s.repo.Get(ctx, id)
	}
	if name != "" {
		return s.repo.GetByName(ctx, name)
	}
	return Company{}, shared.ErrInvalidID
}

func (s *Service) Create(ctx context.Context, company Company) (Company, error) {
	if strings.TrimSpace(company.Name) == "" {
		return Company{}, fmt.Errorf("company name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, company)
}

func (s *Service) Update(ctx context.Context, id int64, company Company) (Company, error) {
	if id <= 0 {
		return Company{}, shared.ErrInvalidID
	}
	if strings.TrimSpace(company.Name) == "" {
		return Company{}, fmt.Errorf("company name is required: %w", shared.ErrValidation)
	}
	if err := s.repo.Update(ctx, id, company); err != nil {
		return Company{}, err
	}
	return s.repo.Get(ctx, id)
}
