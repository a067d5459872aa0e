package service

import (
	"context"
	"iter"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// AccessService answers entitlement questions and streams access changes.
type AccessService struct {
	access AccessStore
	feed   changefeed.Subscriber
	log    zerolog.Logger
	now    func() time.Time
}

func NewAccessService(access AccessStore, feed changefeed.Subscriber, log zerolog.Logger) *AccessService {
	return &AccessService{
		access: access,
		feed:   feed,
		log:    log.With().Str("component", "access").Logger(),
		now:    time.Now,
	}
}

// Check returns the grant that currently entitles userID to play videoID, or nil.
// Expired grants still flagged active are deactivated along the way; those
// writes are best effort and never fail the check.
func (s *AccessService) Check(ctx context.Context, userID, videoID string) (*domain.AccessGrant, error) {
	grants, err := s.access.FindActive(ctx, userID, videoID)
	if err != nil {
		return nil, domain.ErrInternal("failed to check video access", err)
	}

	valid := s.partition(ctx, grants, "check")
	grant := domain.Authoritative(valid)
	metrics.IncAccessCheck(grant != nil)
	return grant, nil
}

// ListActive returns every currently valid grant a user holds, latest expiry first.
func (s *AccessService) ListActive(ctx context.Context, userID string) ([]*domain.AccessGrant, error) {
	grants, err := s.access.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to list active access", err)
	}
	return s.partition(ctx, grants, "dashboard"), nil
}

// partition keeps grants valid at now and deactivates the rest.
func (s *AccessService) partition(ctx context.Context, grants []*domain.AccessGrant, source string) []*domain.AccessGrant {
	now := s.now()
	valid := make([]*domain.AccessGrant, 0, len(grants))
	for _, g := range grants {
		if g.ValidAt(now) {
			valid = append(valid, g)
			continue
		}
		err := s.access.Deactivate(ctx, g.ID)
		metrics.IncGrantDeactivated(source, err)
		if err != nil {
			s.log.Warn().Err(err).Str("grant_id", g.ID).Msg("failed to deactivate expired access")
			continue
		}
		g.IsActive = false
		s.log.Debug().Str("grant_id", g.ID).Str("user_id", g.UserID).Str("video_id", g.VideoID).Msg("expired access deactivated")
	}
	return valid
}

// Snapshot evaluates the authoritative grant for the pair without writing anything.
func (s *AccessService) Snapshot(ctx context.Context, userID, videoID string) (domain.AccessSnapshot, error) {
	grants, err := s.access.FindActive(ctx, userID, videoID)
	if err != nil {
		return domain.AccessSnapshot{}, domain.ErrInternal("failed to read video access", err)
	}
	return domain.NewAccessSnapshot(userID, videoID, domain.Authoritative(grants), s.now()), nil
}

// Watch returns a sequence of access snapshots for the pair. Each range
// subscribes to the change feed, yields the current state, then yields again
// after every change and once more when the current grant expires. It ends when
// ctx is done or the consumer stops. A failed snapshot is yielded as an error
// and the watch continues on the next change.
func (s *AccessService) Watch(ctx context.Context, userID, videoID string) iter.Seq2[domain.AccessSnapshot, error] {
	return func(yield func(domain.AccessSnapshot, error) bool) {
		sub, err := s.feed.Subscribe(ctx, userID, videoID)
		if err != nil {
			yield(domain.AccessSnapshot{}, domain.ErrInternal("failed to subscribe to access changes", err))
			return
		}
		defer sub.Close()

		metrics.LiveSubscriberOpened()
		defer metrics.LiveSubscriberClosed()

		for {
			snap, err := s.Snapshot(ctx, userID, videoID)
			if !yield(snap, err) {
				return
			}

			if !s.waitForChange(ctx, sub, snap) {
				return
			}
		}
	}
}

// waitForChange blocks until a change signal, the grant's expiry, or ctx is done.
func (s *AccessService) waitForChange(ctx context.Context, sub *changefeed.Subscription, snap domain.AccessSnapshot) bool {
	var expiry <-chan time.Time
	if snap.HasAccess {
		timer := time.NewTimer(snap.Access.ExpiresAt.Sub(s.now()))
		defer timer.Stop()
		expiry = timer.C
	}

	select {
	case <-ctx.Done():
		return false
	case <-sub.C:
	case <-expiry:
	}
	return true
}
