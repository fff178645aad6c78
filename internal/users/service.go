package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-retail/meridian/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListUsersFilter) ([]User, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, fmt.Errorf("role %q: %w", *filter.Role, ErrInvalidRole)
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input CreateUserInput) (User, error) {
	if strings.TrimSpace(input.FullName) == "" || strings.TrimSpace(input.Email) == "" {
		return User{}, fmt.Errorf("full name and email are required: %w", shared.ErrValidation)
	}
	if len(input.Password) < 8 {
		return User{}, fmt.Errorf("password must be at least 8 characters: %w", shared.ErrValidation)
	}
	if !input.Role.Valid() {
		return User{}, fmt.Errorf("role %q: %w", input.Role, ErrInvalidRole)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.Create(ctx, User{
		FullName:     input.FullName,
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		Role:         input.Role,
		PasswordHash: string(hash),
		IsActive:     true,
	})
}

func (s *Service) Update(ctx context.Context, id int64, input UpdateUserInput) (User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Username != nil {
		user.Username = input.Username
	}
	if input.Email != nil {
		user.Email = strings.ToLower(*input.Email)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return User{}, fmt.Errorf("role %q: %w", *input.Role, ErrInvalidRole)
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < 8 {
			return User{}, fmt.Errorf("password must be at least 8 characters: %w", shared.ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// VerifyPassword checks credentials for login flows.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, fmt.Errorf("password mismatch: %w", shared.ErrValidation)
	}
	return user, nil
}
