package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackGateway talks to the Paystack REST API.
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystackGateway(secretKey, baseURL string) *PaystackGateway {
	if baseURL == "" {
		baseURL = defaultPaystackBaseURL
	}
	return &PaystackGateway{
		secretKey: secretKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PaystackGateway) Name() string { return "paystack" }

type paystackVerifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Status    string         `json:"status"`
		Reference string         `json:"reference"`
		Amount    int64          `json:"amount"`
		Currency  string         `json:"currency"`
		PaidAt    *time.Time     `json:"paid_at"`
		Metadata  map[string]any `json:"metadata"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// Verify calls GET /transaction/verify/{reference}.
func (g *PaystackGateway) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if g.secretKey == "" {
		return nil, ErrNotConfigured
	}

	endpoint := g.baseURL + "/transaction/verify/" + url.PathEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read verify response: %w", err)
	}

	var out paystackVerifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &VerifyError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !out.Status || out.Data == nil {
		msg := out.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &VerifyError{StatusCode: resp.StatusCode, Message: msg}
	}

	d := out.Data
	ref := d.Reference
	if ref == "" {
		ref = reference
	}
	return &Transaction{
		Reference:     ref,
		Status:        d.Status,
		Amount:        d.Amount,
		Currency:      d.Currency,
		PaidAt:        d.PaidAt,
		CustomerEmail: d.Customer.Email,
		Metadata:      d.Metadata,
	}, nil
}
