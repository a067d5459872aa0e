package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// AccessRepository stores access grants and announces every write on the change feed.
type AccessRepository struct {
	db  *pgxpool.Pool
	pub changefeed.Publisher
	log zerolog.Logger
}

func NewAccessRepository(db *pgxpool.Pool, pub changefeed.Publisher, log zerolog.Logger) *AccessRepository {
	if pub == nil {
		pub = changefeed.Nop{}
	}
	return &AccessRepository{db: db, pub: pub, log: log}
}

const accessColumns = `id, user_id, video_id, payment_id, is_active, expires_at, created_at`

func scanAccess(row pgx.Row) (*domain.AccessGrant, error) {
	var g domain.AccessGrant
	if err := row.Scan(&g.ID, &g.UserID, &g.VideoID, &g.PaymentID, &g.IsActive, &g.ExpiresAt, &g.CreatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *AccessRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.AccessGrant, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access grants: %w", err)
	}
	defer rows.Close()

	grants := []*domain.AccessGrant{}
	for rows.Next() {
		g, err := scanAccess(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *AccessRepository) publish(ctx context.Context, userID, videoID, grantID, kind string) {
	ev := changefeed.Event{UserID: userID, VideoID: videoID, GrantID: grantID, Kind: kind}
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.Warn().Err(err).Str("grant_id", grantID).Str("kind", kind).Msg("access change not published")
	}
}

func (r *AccessRepository) Create(ctx context.Context, g *domain.AccessGrant) error {
	query := `
		INSERT INTO video_access (` + accessColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, g.ID, g.UserID, g.VideoID, g.PaymentID, g.IsActive, g.ExpiresAt, g.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create access grant: %w", err)
	}
	r.publish(ctx, g.UserID, g.VideoID, g.ID, changefeed.KindGranted)
	return nil
}

// FindActive returns all grants flagged active for the pair, regardless of expiry.
func (r *AccessRepository) FindActive(ctx context.Context, userID, videoID string) ([]*domain.AccessGrant, error) {
	return r.query(ctx,
		`SELECT `+accessColumns+` FROM video_access WHERE user_id = $1 AND video_id = $2 AND is_active ORDER BY expires_at DESC`,
		userID, videoID)
}

func (r *AccessRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.AccessGrant, error) {
	return r.query(ctx,
		`SELECT `+accessColumns+` FROM video_access WHERE user_id = $1 AND is_active ORDER BY expires_at DESC`,
		userID)
}

// ListExpiredActive returns up to limit grants still flagged active whose expiry is at or before now.
func (r *AccessRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]*domain.AccessGrant, error) {
	return r.query(ctx,
		`SELECT `+accessColumns+` FROM video_access WHERE is_active AND expires_at <= $1 ORDER BY expires_at LIMIT $2`,
		now, limit)
}

// Deactivate flags a grant inactive. Deactivating an inactive or unknown grant is a no-op.
func (r *AccessRepository) Deactivate(ctx context.Context, id string) error {
	var userID, videoID string
	err := r.db.QueryRow(ctx,
		`UPDATE video_access SET is_active = FALSE WHERE id = $1 AND is_active RETURNING user_id, video_id`, id,
	).Scan(&userID, &videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("failed to deactivate access grant: %w", err)
	}
	r.publish(ctx, userID, videoID, id, changefeed.KindDeactivated)
	return nil
}

// CountActive counts grants that are flagged active and unexpired at now.
func (r *AccessRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM video_access WHERE is_active AND expires_at > $1`, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count access grants: %w", err)
	}
	return n, nil
}
