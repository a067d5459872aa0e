package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Gateway verifies transactions with a payment provider by reference.
type Gateway interface {
	Name() string
	// Verify asks the provider about a reference. A non-nil Transaction
	// is returned only when the provider answered with a transaction body.
	Verify(ctx context.Context, reference string) (*Transaction, error)
}

// Transaction status values reported by the provider.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
	StatusPending   = "pending"
)

// Transaction is the provider's view of a payment.
type Transaction struct {
	Reference     string
	Status        string
	Amount        int64 // minor units
	Currency      string
	PaidAt        *time.Time
	CustomerEmail string
	Metadata      map[string]any
}

// Successful reports whether the provider settled the transaction.
func (t *Transaction) Successful() bool {
	return t != nil && t.Status == StatusSuccess
}

// ErrNotConfigured is returned when the gateway has no secret key.
var ErrNotConfigured = errors.New("payment gateway not configured")

// VerifyError is a non-success answer from the provider (bad reference,
// rejected key, upstream outage).
type VerifyError struct {
	StatusCode int
	Message    string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("gateway verify failed (status %d): %s", e.StatusCode, e.Message)
}
