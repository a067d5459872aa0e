package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserID is the identity-provider subject of the authenticated caller.
	UserID contextKey = "userID"
	// UserEmail is the context key for the authenticated user's email.
	UserEmail contextKey = "userEmail"
	// UserName is the display name claim, used on first sign-in.
	UserName contextKey = "userName"
	// UserRole is the context key for the authenticated user's role.
	UserRole contextKey = "userRole"
)
