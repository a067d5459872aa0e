package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gisvideo/backend/internal/domain"
)

// UserService manages storefront profiles keyed by identity subject.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// SignIn returns the stored profile, creating it on first sign-in.
// The bool reports whether a profile was created.
func (s *UserService) SignIn(ctx context.Context, claims *domain.IdentityClaims, req domain.SignInRequest) (*domain.User, bool, error) {
	existing, err := s.users.FindByID(ctx, claims.Sub)
	if err != nil {
		return nil, false, domain.ErrInternal("failed to find user", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" && last == "" {
		first, last = domain.SplitName(claims.Name)
	}

	u := &domain.User{
		ID:        claims.Sub,
		Email:     claims.Email,
		FirstName: first,
		LastName:  last,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			// Lost a race with a parallel first sign-in.
			existing, err := s.users.FindByID(ctx, claims.Sub)
			if err != nil || existing == nil {
				return nil, false, domain.ErrInternal("failed to find user", err)
			}
			return existing, false, nil
		}
		return nil, false, domain.ErrInternal("failed to create user", err)
	}
	return u, true, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if u == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	return u, nil
}
