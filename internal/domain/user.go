package domain

import (
	"strings"
	"time"
)

// User is the profile kept for an identity-provider account.
type User struct {
	ID            string    `json:"id"` // identity-provider subject
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	TotalSpent    int64     `json:"totalSpent"` // minor units
	VideosWatched int64     `json:"videosWatched"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IdentityClaims are the verified claims of an identity-provider token.
type IdentityClaims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SignInRequest carries optional profile data supplied on first sign-in.
type SignInRequest struct {
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

// SplitName splits a display name into first and last name on the first space.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
