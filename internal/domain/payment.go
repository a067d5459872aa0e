package domain

import "time"

// PaymentStatus is the lifecycle state of a checkout attempt.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Payment records one checkout attempt against the gateway.
type Payment struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	VideoID         string        `json:"videoId"`
	Amount          int64         `json:"amount"` // minor units
	Currency        string        `json:"currency"`
	Reference       string        `json:"reference"` // gateway reference, unique
	Status          PaymentStatus `json:"status"`
	AccessExpiresAt time.Time     `json:"accessExpiresAt"`
	CreatedAt       time.Time     `json:"createdAt"`
	VerifiedAt      *time.Time    `json:"verifiedAt,omitempty"`
}

// VerifyPaymentRequest is the body of POST /api/verify-payment and POST /api/videos/{id}/purchase.
type VerifyPaymentRequest struct {
	Reference string `json:"reference" validate:"required,max=200"`
}

// VerifyPaymentResponse mirrors the public verify endpoint contract.
type VerifyPaymentResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
	Amount    *int64 `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

// PurchaseResult is what a completed purchase produced.
type PurchaseResult struct {
	Payment *Payment     `json:"payment"`
	Access  *AccessGrant `json:"access"`
}

// PaymentStats aggregates successful payments.
type PaymentStats struct {
	Successful int64 `json:"successful"`
	Revenue    int64 `json:"revenue"`
}

// PaymentWithVideo is a dashboard row.
type PaymentWithVideo struct {
	*Payment
	Video *Video `json:"video,omitempty"`
}
