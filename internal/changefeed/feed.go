// Package changefeed fans out access-grant changes to live subscribers.
//
// Subscribers only get a wake-up signal; they re-read the store to learn the
// current state, so dropped or coalesced signals never lose information.
package changefeed

import (
	"context"
	"sync"
)

// Event kinds.
const (
	KindGranted     = "granted"
	KindDeactivated = "deactivated"
)

// Event describes a change to one (user, video) entitlement.
type Event struct {
	UserID  string `json:"userId"`
	VideoID string `json:"videoId"`
	GrantID string `json:"grantId"`
	Kind    string `json:"kind"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, userID, videoID string) (*Subscription, error)
}

// Feed is both ends of a change feed.
type Feed interface {
	Publisher
	Subscriber
	Close() error
}

// Channel returns the topic name for a (user, video) pair.
func Channel(userID, videoID string) string {
	return "access:" + userID + ":" + videoID
}

// Subscription delivers coalesced change signals until closed.
type Subscription struct {
	// C receives a value after one or more changes. It is never closed.
	C <-chan struct{}

	notify chan struct{}
	stop   func()
	once   sync.Once
}

func newSubscription(stop func()) *Subscription {
	ch := make(chan struct{}, 1)
	return &Subscription{C: ch, notify: ch, stop: stop}
}

func (s *Subscription) signal() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}

// Nop discards events. Used where no live subscribers exist (one-shot tools).
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
