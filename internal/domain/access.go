package domain

import (
	"fmt"
	"time"
)

// AccessWindow is how long a successful payment unlocks a video.
const AccessWindow = 24 * time.Hour

// AccessGrant is a time-bounded entitlement to play one video.
type AccessGrant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	PaymentID string    `json:"paymentId"`
	IsActive  bool      `json:"isActive"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidAt reports whether the grant is flagged active and expires strictly after now.
func (g *AccessGrant) ValidAt(now time.Time) bool {
	return g != nil && g.IsActive && g.ExpiresAt.After(now)
}

// Authoritative picks the grant with the latest expiry among grants.
func Authoritative(grants []*AccessGrant) *AccessGrant {
	var best *AccessGrant
	for _, g := range grants {
		if best == nil || g.ExpiresAt.After(best.ExpiresAt) {
			best = g
		}
	}
	return best
}

// AccessSnapshot is the state of a (user, video) entitlement evaluated at a point in time.
type AccessSnapshot struct {
	UserID    string       `json:"userId"`
	VideoID   string       `json:"videoId"`
	HasAccess bool         `json:"hasAccess"`
	Access    *AccessGrant `json:"access"`
	Remaining string       `json:"remaining,omitempty"`
	At        time.Time    `json:"at"`
}

// NewAccessSnapshot evaluates grant against now. An invalid grant is reported as no access.
func NewAccessSnapshot(userID, videoID string, grant *AccessGrant, now time.Time) AccessSnapshot {
	snap := AccessSnapshot{UserID: userID, VideoID: videoID, At: now}
	if grant.ValidAt(now) {
		snap.HasAccess = true
		snap.Access = grant
		snap.Remaining = FormatRemaining(grant.ExpiresAt.Sub(now))
	} else if grant != nil {
		snap.Remaining = FormatRemaining(0)
	}
	return snap
}

// FormatRemaining renders the time left on a grant, e.g. "23h 59m remaining".
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "Access expired"
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm remaining", hours, minutes)
}

// AdminStats are the counters behind GET /api/admin/stats.
type AdminStats struct {
	Users          int64 `json:"users"`
	Payments       int64 `json:"payments"`
	Revenue        int64 `json:"revenue"`
	ActiveAccesses int64 `json:"activeAccesses"`
}
