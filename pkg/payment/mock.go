package payment

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// MockGateway settles every reference locally. References prefixed with
// "fail_" come back failed and "missing_" ones are unknown to the provider.
type MockGateway struct {
	amount   int64
	currency string
}

func NewMockGateway(amount int64, currency string) *MockGateway {
	return &MockGateway{amount: amount, currency: currency}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(reference, "missing_"):
		return nil, &VerifyError{StatusCode: http.StatusBadRequest, Message: "Transaction reference not found"}
	case strings.HasPrefix(reference, "fail_"):
		return &Transaction{Reference: reference, Status: StatusFailed, Amount: g.amount, Currency: g.currency}, nil
	}
	paid := time.Now().UTC()
	return &Transaction{
		Reference: reference,
		Status:    StatusSuccess,
		Amount:    g.amount,
		Currency:  g.currency,
		PaidAt:    &paid,
	}, nil
}
