package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func received(sub *Subscription) bool {
	select {
	case <-sub.C:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()

	mine, err := hub.Subscribe(ctx, "u1", "v1")
	require.NoError(t, err)
	defer mine.Close()
	other, err := hub.Subscribe(ctx, "u2", "v1")
	require.NoError(t, err)
	defer other.Close()

	require.NoError(t, hub.Publish(ctx, Event{UserID: "u1", VideoID: "v1", Kind: KindGranted}))

	assert.True(t, received(mine))
	assert.False(t, received(other))
}

func TestHubCoalescesSignals(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	sub, err := hub.Subscribe(ctx, "u1", "v1")
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, hub.Publish(ctx, Event{UserID: "u1", VideoID: "v1"}))
	}

	assert.True(t, received(sub))
	assert.False(t, received(sub), "burst should collapse into one signal")
}

func TestHubCloseUnsubscribes(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	sub, err := hub.Subscribe(ctx, "u1", "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, hub.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Subscribers())

	require.NoError(t, hub.Publish(ctx, Event{UserID: "u1", VideoID: "v1"}))
	assert.False(t, received(sub))
}

func TestHubRejectsAfterClose(t *testing.T) {
	hub := NewHub()
	require.NoError(t, hub.Close())
	_, err := hub.Subscribe(context.Background(), "u1", "v1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "access:u1:gis_documentary_001", Channel("u1", "gis_documentary_001"))
}
