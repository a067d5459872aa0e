package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("changefeed closed")

// RedisFeed publishes access changes over Redis pub/sub so every server
// instance can wake its own live subscribers.
type RedisFeed struct {
	cli *redis.Client
	log zerolog.Logger
}

// NewRedisFeed connects to addr, which may be a redis:// URL or host:port.
func NewRedisFeed(ctx context.Context, addr, password string, log zerolog.Logger) (*RedisFeed, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisFeed{cli: c, log: log.With().Str("component", "changefeed").Logger()}, nil
}

func (f *RedisFeed) Ping(ctx context.Context) error { return f.cli.Ping(ctx).Err() }

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := f.cli.Publish(ctx, Channel(ev.UserID, ev.VideoID), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, userID, videoID string) (*Subscription, error) {
	ps := f.cli.Subscribe(ctx, Channel(userID, videoID))
	// Wait for the subscription confirmation so no publish is missed after we return.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	sub := newSubscription(func() {
		if err := ps.Close(); err != nil {
			f.log.Debug().Err(err).Msg("closing pubsub")
		}
	})
	msgs := ps.Channel()
	go func() {
		for range msgs {
			sub.signal()
		}
	}()
	return sub, nil
}

func (f *RedisFeed) Close() error { return f.cli.Close() }
