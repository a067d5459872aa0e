package service

import (
	"context"
	"time"

	"github.com/gisvideo/backend/internal/metrics"
	"github.com/rs/zerolog"
)

const sweepBatch = 500

// ExpirySweeper periodically deactivates grants that expired while still
// flagged active, so live watchers hear about it without waiting for a read.
type ExpirySweeper struct {
	access   AccessStore
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewExpirySweeper(access AccessStore, interval time.Duration, log zerolog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		access:   access,
		interval: interval,
		log:      log.With().Str("component", "expiry_sweeper").Logger(),
		now:      time.Now,
	}
}

// Start runs the sweep loop in a background goroutine until ctx is done.
// A zero interval disables it.
func (s *ExpirySweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("expiry sweeper disabled")
		return
	}
	s.log.Info().Dur("interval", s.interval).Msg("expiry sweeper started")
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("expiry sweeper stopped")
				return
			case <-ticker.C:
				if _, err := s.SweepOnce(ctx); err != nil {
					s.log.Error().Err(err).Msg("sweep failed")
				}
			}
		}
	}()
}

// SweepOnce deactivates up to one batch of expired grants and returns how many it flipped.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := s.access.ListExpiredActive(ctx, s.now(), sweepBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, g := range expired {
		err := s.access.Deactivate(ctx, g.ID)
		metrics.IncGrantDeactivated("sweep", err)
		if err != nil {
			s.log.Warn().Err(err).Str("grant_id", g.ID).Msg("failed to deactivate expired access")
			continue
		}
		n++
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("expired access deactivated")
	}
	return n, nil
}
