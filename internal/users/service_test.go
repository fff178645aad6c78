package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-retail/meridian/internal/shared"
)

type memoryRepo struct {
	users  map[int64]User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User)}
}

func (r *memoryRepo) List(ctx context.Context, filter ListUsersFilter) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		out = append(out, u)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return User{}, ErrNotFound
}

func (r *memoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, user User) (User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return User{}, ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepo) Update(ctx context.Context, user User) error {
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())

	user, err := svc.Create(context.Background(), CreateUserInput{
		FullName: "Dana Clerk",
		Email:    "Dana@Example.com",
		Password: "correct horse",
		Role:     RoleInventoryClerk,
	})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.PasswordHash)
	require.True(t, user.IsActive)
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Email: "a@b.com", Password: "password1", Role: RoleAdmin})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateUserInput{FullName: "A", Email: "a@b.com", Password: "short", Role: RoleAdmin})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, CreateUserInput{FullName: "A", Email: "a@b.com", Password: "password1", Role: Role("WIZARD")})
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	input := CreateUserInput{FullName: "A", Email: "a@b.com", Password: "password1", Role: RoleManager}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestVerifyPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{FullName: "A", Email: "a@b.com", Password: "password1", Role: RoleCashier})
	require.NoError(t, err)

	user, err := svc.VerifyPassword(ctx, "A@B.com", "password1")
	require.NoError(t, err)
	require.Equal(t, RoleCashier, user.Role)

	_, err = svc.VerifyPassword(ctx, "a@b.com", "wrong")
	require.Error(t, err)
}

func TestUpdateUserRole(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{FullName: "A", Email: "a@b.com", Password: "password1", Role: RoleCashier})
	require.NoError(t, err)

	role := RoleManager
	updated, err := svc.Update(ctx, user.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	require.Equal(t, RoleManager, updated.Role)

	bad := Role("WIZARD")
	_, err = svc.Update(ctx, user.ID, UpdateUserInput{Role: &bad})
	require.ErrorIs(t, err, ErrInvalidRole)
}
