package domain

// Dashboard is the signed-in user's purchase history and live entitlements.
type Dashboard struct {
	User         *User               `json:"user"`
	Payments     []*PaymentWithVideo `json:"payments"`
	ActiveAccess []*AccessGrant      `json:"activeAccess"`
	Warnings     []string            `json:"warnings"`
}
