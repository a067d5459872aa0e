//go:build integration

package changefeed

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisFeedRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := NewRedisFeed(ctx, addr, "", zerolog.New(nil))
	require.NoError(t, err)
	defer feed.Close()

	sub, err := feed.Subscribe(ctx, "u1", "v1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, feed.Publish(ctx, Event{UserID: "u1", VideoID: "v1", Kind: KindGranted}))

	select {
	case <-sub.C:
	case <-ctx.Done():
		assert.Fail(t, "no signal received")
	}
}
