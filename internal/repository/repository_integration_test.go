//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewDB(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresPurchaseRecords(t *testing.T) {
	ctx := context.Background()
	pool := newTestPool(t)

	users := NewUserRepository(pool)
	videos := NewVideoRepository(pool)
	payments := NewPaymentRepository(pool)
	access := NewAccessRepository(pool, changefeed.NewHub(), zerolog.New(nil))

	now := time.Now().UTC().Truncate(time.Microsecond)
	userID := "u-" + uuid.NewString()
	videoID := "v-" + uuid.NewString()
	ref := "ref-" + uuid.NewString()

	require.NoError(t, users.Create(ctx, &domain.User{ID: userID, Email: "t@example.com", CreatedAt: now}))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{ID: userID, CreatedAt: now}), domain.ErrUserExists)
	require.NoError(t, videos.Upsert(ctx, &domain.Video{ID: videoID, Title: "t", Price: 10000, Currency: "GHS", VideoURL: "https://x", CreatedAt: now}))

	v, err := videos.FindByID(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, "https://x", v.VideoURL)

	newer := "v-" + uuid.NewString()
	require.NoError(t, videos.Upsert(ctx, &domain.Video{ID: newer, Title: "n", Price: 10000, Currency: "GHS", CreatedAt: now.Add(time.Hour)}))
	list, err := videos.List(ctx)
	require.NoError(t, err)
	pos := map[string]int{}
	for i, lv := range list {
		pos[lv.ID] = i
	}
	assert.Less(t, pos[newer], pos[videoID], "catalog lists newest first")

	p := &domain.Payment{ID: uuid.NewString(), UserID: userID, VideoID: videoID, Amount: 10000, Currency: "GHS",
		Reference: ref, Status: domain.PaymentStatusSuccessful, AccessExpiresAt: now.Add(domain.AccessWindow),
		CreatedAt: now, VerifiedAt: &now}
	require.NoError(t, payments.Create(ctx, p))

	dup := *p
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, payments.Create(ctx, &dup), domain.ErrDuplicateReference)

	found, err := payments.FindByReference(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	g := &domain.AccessGrant{ID: uuid.NewString(), UserID: userID, VideoID: videoID, PaymentID: p.ID,
		IsActive: true, ExpiresAt: now.Add(-time.Millisecond), CreatedAt: now}
	require.NoError(t, access.Create(ctx, g))

	expired, err := access.ListExpiredActive(ctx, now, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, expired)

	require.NoError(t, access.Deactivate(ctx, g.ID))
	active, err := access.FindActive(ctx, userID, videoID)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, users.IncrementStats(ctx, userID, 10000, 1))
	u, err := users.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), u.TotalSpent)
	assert.Equal(t, int64(1), u.VideosWatched)
}
