package service

import (
	"context"
	"time"

	"github.com/gisvideo/backend/internal/domain"
)

// Store interfaces. Both the bolt docstore and the postgres repositories
// satisfy them. Lookups return nil, nil when nothing matches.

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	IncrementStats(ctx context.Context, id string, spent, watched int64) error
	Count(ctx context.Context) (int64, error)
}

type VideoStore interface {
	Upsert(ctx context.Context, v *domain.Video) error
	FindByID(ctx context.Context, id string) (*domain.Video, error)
	List(ctx context.Context) ([]*domain.Video, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)
	Stats(ctx context.Context) (*domain.PaymentStats, error)
}

type AccessStore interface {
	Create(ctx context.Context, g *domain.AccessGrant) error
	FindActive(ctx context.Context, userID, videoID string) ([]*domain.AccessGrant, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.AccessGrant, error)
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]*domain.AccessGrant, error)
	Deactivate(ctx context.Context, id string) error
	CountActive(ctx context.Context, now time.Time) (int64, error)
}

// Stores bundles one backend's repositories.
type Stores struct {
	Users    UserStore
	Videos   VideoStore
	Payments PaymentStore
	Access   AccessStore
}
