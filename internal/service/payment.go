package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/metrics"
	"github.com/gisvideo/backend/pkg/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentService verifies gateway transactions and turns them into access grants.
type PaymentService struct {
	gateway  payment.Gateway
	users    UserStore
	videos   VideoStore
	payments PaymentStore
	access   AccessStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewPaymentService(gateway payment.Gateway, stores Stores, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		users:    stores.Users,
		videos:   stores.Videos,
		payments: stores.Payments,
		access:   stores.Access,
		log:      log.With().Str("component", "payment").Str("gateway", gateway.Name()).Logger(),
		now:      time.Now,
	}
}

func badRequest(msg string, err error) *domain.AppError {
	return &domain.AppError{Code: http.StatusBadRequest, Message: msg, Err: err}
}

// Verify asks the gateway whether reference settled successfully. It writes nothing.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*payment.Transaction, error) {
	start := time.Now()
	tx, err := s.gateway.Verify(ctx, reference)
	elapsed := time.Since(start)

	var verr *payment.VerifyError
	switch {
	case errors.Is(err, payment.ErrNotConfigured):
		metrics.ObserveVerify(false, "not_configured", elapsed)
		s.log.Error().Msg("payment gateway secret key is not configured")
		return nil, domain.ErrInternal("Payment verification not configured", err)
	case errors.As(err, &verr):
		metrics.ObserveVerify(false, "gateway_rejected", elapsed)
		s.log.Warn().Int("status", verr.StatusCode).Str("reference", reference).Str("gateway_message", verr.Message).Msg("payment verification rejected")
		return nil, badRequest("Payment verification failed", err)
	case err != nil:
		metrics.ObserveVerify(false, "transport", elapsed)
		s.log.Error().Err(err).Str("reference", reference).Msg("payment verification error")
		return nil, domain.ErrInternal("Internal server error", err)
	case !tx.Successful():
		metrics.ObserveVerify(false, "not_successful", elapsed)
		s.log.Info().Str("reference", reference).Str("status", tx.Status).Msg("payment not successful")
		return tx, badRequest("Payment was not successful", nil)
	}

	metrics.ObserveVerify(true, "", elapsed)
	s.log.Info().Str("reference", reference).Int64("amount", tx.Amount).Str("currency", tx.Currency).Msg("payment verified")
	return tx, nil
}

// Purchase verifies reference and, when it settled for at least the video's
// price, records the payment, issues a 24-hour grant and bumps the buyer's
// stats. Each write is independent: a failure is returned as is and earlier
// writes stay in place.
func (s *PaymentService) Purchase(ctx context.Context, userID, videoID, reference string) (*domain.PurchaseResult, error) {
	log := s.log.With().Str("user_id", userID).Str("video_id", videoID).Str("reference", reference).Logger()

	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find video", err)
	}
	if video == nil {
		return nil, domain.ErrNotFound("video not found")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find user", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user not found")
	}

	// Cheap early rejection; the store enforces uniqueness on write.
	prior, err := s.payments.FindByReference(ctx, reference)
	if err != nil {
		return nil, domain.ErrInternal("failed to look up payment", err)
	}
	if prior != nil {
		return nil, domain.ErrConflict("payment reference already used", domain.ErrDuplicateReference)
	}

	tx, err := s.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(tx.Currency, video.Currency) {
		log.Warn().Str("paid_currency", tx.Currency).Msg("currency mismatch")
		return nil, domain.ErrBadRequest("Payment currency does not match the video price")
	}
	if tx.Amount < video.Price {
		log.Warn().Int64("paid", tx.Amount).Int64("price", video.Price).Msg("underpayment")
		return nil, domain.ErrBadRequest("Payment amount is less than the video price")
	}

	now := s.now().UTC()
	expires := now.Add(domain.AccessWindow)

	p := &domain.Payment{
		ID:              uuid.NewString(),
		UserID:          userID,
		VideoID:         videoID,
		Amount:          video.Price,
		Currency:        video.Currency,
		Reference:       reference,
		Status:          domain.PaymentStatusSuccessful,
		AccessExpiresAt: expires,
		CreatedAt:       now,
		VerifiedAt:      &now,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, domain.ErrConflict("payment reference already used", err)
		}
		return nil, domain.ErrInternal("failed to record payment", err)
	}
	metrics.IncPayment(string(p.Status))
	metrics.AddPaymentRevenue(p.Currency, p.Amount)

	grant := &domain.AccessGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		VideoID:   videoID,
		PaymentID: p.ID,
		IsActive:  true,
		ExpiresAt: expires,
		CreatedAt: now,
	}
	if err := s.access.Create(ctx, grant); err != nil {
		log.Error().Err(err).Str("payment_id", p.ID).Msg("payment recorded but access grant failed")
		return nil, domain.ErrInternal("failed to grant access", err)
	}
	metrics.IncGrantIssued()

	if err := s.users.IncrementStats(ctx, userID, video.Price, 1); err != nil {
		log.Error().Err(err).Str("payment_id", p.ID).Msg("access granted but user stats not updated")
		return nil, domain.ErrInternal("failed to update user stats", err)
	}

	log.Info().Str("payment_id", p.ID).Time("expires_at", expires).Msg("access granted")
	return &domain.PurchaseResult{Payment: p, Access: grant}, nil
}
