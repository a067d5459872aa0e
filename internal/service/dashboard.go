package service

import (
	"context"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/rs/zerolog"
)

const dashboardLoadWarning = "Failed to load dashboard data. Please try again."

// DashboardService assembles a user's purchase history and live entitlements.
type DashboardService struct {
	users    UserStore
	videos   VideoStore
	payments PaymentStore
	access   *AccessService
	log      zerolog.Logger
}

func NewDashboardService(stores Stores, access *AccessService, log zerolog.Logger) *DashboardService {
	return &DashboardService{
		users:    stores.Users,
		videos:   stores.Videos,
		payments: stores.Payments,
		access:   access,
		log:      log.With().Str("component", "dashboard").Logger(),
	}
}

// Get returns the dashboard for userID. Read failures on the lists degrade
// to empty lists plus a warning rather than an error.
func (s *DashboardService) Get(ctx context.Context, userID string) (*domain.Dashboard, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}

	d := &domain.Dashboard{
		User:         user,
		Payments:     []*domain.PaymentWithVideo{},
		ActiveAccess: []*domain.AccessGrant{},
		Warnings:     []string{},
	}
	degraded := false

	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to load payments")
		degraded = true
	}
	videos := map[string]*domain.Video{}
	for _, p := range payments {
		v, seen := videos[p.VideoID]
		if !seen {
			v, err = s.videos.FindByID(ctx, p.VideoID)
			if err != nil {
				s.log.Debug().Err(err).Str("video_id", p.VideoID).Msg("video lookup failed")
				v = nil
			}
			videos[p.VideoID] = v
		}
		d.Payments = append(d.Payments, &domain.PaymentWithVideo{Payment: p, Video: v})
	}

	active, err := s.access.ListActive(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to load active access")
		degraded = true
	} else {
		d.ActiveAccess = active
	}

	if degraded {
		d.Warnings = append(d.Warnings, dashboardLoadWarning)
	}
	return d, nil
}
