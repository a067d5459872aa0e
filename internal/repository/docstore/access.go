package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

// AccessRepository stores access grants and announces every committed write on the change feed.
type AccessRepository struct {
	db  *DB
	pub changefeed.Publisher
	log zerolog.Logger
}

func NewAccessRepository(db *DB, pub changefeed.Publisher, log zerolog.Logger) *AccessRepository {
	if pub == nil {
		pub = changefeed.Nop{}
	}
	return &AccessRepository{db: db, pub: pub, log: log}
}

func (r *AccessRepository) publish(ctx context.Context, g *domain.AccessGrant, kind string) {
	ev := changefeed.Event{UserID: g.UserID, VideoID: g.VideoID, GrantID: g.ID, Kind: kind}
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("grant_id", g.ID).Str("kind", kind).Msg("access change not published")
	}
}

func (r *AccessRepository) Create(ctx context.Context, g *domain.AccessGrant) error {
	err := r.db.bolt.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(bucketAccess), g.ID, g)
	})
	if err != nil {
		return fmt.Errorf("failed to create access grant: %w", err)
	}
	r.publish(ctx, g, changefeed.KindGranted)
	return nil
}

func (r *AccessRepository) filter(keep func(*domain.AccessGrant) bool) ([]*domain.AccessGrant, error) {
	grants := []*domain.AccessGrant{}
	err := r.db.bolt.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAccess).ForEach(func(_, v []byte) error {
			var g domain.AccessGrant
			if err := json.Unmarshal(v, &g); err != nil {
				return err
			}
			if keep(&g) {
				grants = append(grants, &g)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query access grants: %w", err)
	}
	return grants, nil
}

func latestFirst(grants []*domain.AccessGrant) {
	sort.SliceStable(grants, func(i, j int) bool {
		return grants[i].ExpiresAt.After(grants[j].ExpiresAt)
	})
}

// FindActive returns all grants flagged active for the pair, regardless of expiry.
func (r *AccessRepository) FindActive(_ context.Context, userID, videoID string) ([]*domain.AccessGrant, error) {
	grants, err := r.filter(func(g *domain.AccessGrant) bool {
		return g.IsActive && g.UserID == userID && g.VideoID == videoID
	})
	if err != nil {
		return nil, err
	}
	latestFirst(grants)
	return grants, nil
}

func (r *AccessRepository) ListActiveByUser(_ context.Context, userID string) ([]*domain.AccessGrant, error) {
	grants, err := r.filter(func(g *domain.AccessGrant) bool {
		return g.IsActive && g.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	latestFirst(grants)
	return grants, nil
}

// ListExpiredActive returns up to limit grants still flagged active whose expiry is at or before now.
func (r *AccessRepository) ListExpiredActive(_ context.Context, now time.Time, limit int) ([]*domain.AccessGrant, error) {
	grants, err := r.filter(func(g *domain.AccessGrant) bool {
		return g.IsActive && !g.ExpiresAt.After(now)
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(grants, func(i, j int) bool {
		return grants[i].ExpiresAt.Before(grants[j].ExpiresAt)
	})
	if limit > 0 && len(grants) > limit {
		grants = grants[:limit]
	}
	return grants, nil
}

// Deactivate flags a grant inactive. Deactivating an inactive or unknown grant is a no-op.
func (r *AccessRepository) Deactivate(ctx context.Context, id string) error {
	var changed *domain.AccessGrant
	err := r.db.bolt.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketAccess)
		var g domain.AccessGrant
		found, err := get(b, id, &g)
		if err != nil || !found || !g.IsActive {
			return err
		}
		g.IsActive = false
		if err := put(b, id, &g); err != nil {
			return err
		}
		changed = &g
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate access grant: %w", err)
	}
	if changed != nil {
		r.publish(ctx, changed, changefeed.KindDeactivated)
	}
	return nil
}

// CountActive counts grants that are flagged active and unexpired at now.
func (r *AccessRepository) CountActive(_ context.Context, now time.Time) (int64, error) {
	grants, err := r.filter(func(g *domain.AccessGrant) bool {
		return g.ValidAt(now)
	})
	if err != nil {
		return 0, err
	}
	return int64(len(grants)), nil
}
