package service

import (
	"context"
	"time"

	"github.com/gisvideo/backend/internal/domain"
)

// StatsService computes admin counters.
type StatsService struct {
	stores Stores
	now    func() time.Time
}

func NewStatsService(stores Stores) *StatsService {
	return &StatsService{stores: stores, now: time.Now}
}

func (s *StatsService) Admin(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.stores.Users.Count(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to count users", err)
	}
	payments, err := s.stores.Payments.Stats(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to compute payment stats", err)
	}
	active, err := s.stores.Access.CountActive(ctx, s.now())
	if err != nil {
		return nil, domain.ErrInternal("failed to count active access", err)
	}
	return &domain.AdminStats{
		Users:          users,
		Payments:       payments.Successful,
		Revenue:        payments.Revenue,
		ActiveAccesses: active,
	}, nil
}
