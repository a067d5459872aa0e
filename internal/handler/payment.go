package handler

import (
	"net/http"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Verify handles POST /api/verify-payment. It only confirms the transaction
// with the gateway; nothing is recorded.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyPaymentRequest
	if err := DecodeJSON(r, &req); err != nil {
		msg := "invalid request"
		if appErr, ok := domain.AsAppError(err); ok {
			msg = appErr.Message
		}
		JSON(w, http.StatusBadRequest, domain.VerifyPaymentResponse{Message: msg})
		return
	}

	tx, err := h.svc.Verify(r.Context(), req.Reference)
	if err != nil {
		resp := domain.VerifyPaymentResponse{Message: "Internal server error"}
		code := http.StatusInternalServerError
		if appErr, ok := domain.AsAppError(err); ok {
			resp.Message = appErr.Message
			code = appErr.Code
		}
		if tx != nil {
			resp.Reference = req.Reference
		}
		JSON(w, code, resp)
		return
	}

	amount := tx.Amount
	JSON(w, http.StatusOK, domain.VerifyPaymentResponse{
		Success:   true,
		Message:   "Payment verified successfully",
		Reference: req.Reference,
		Amount:    &amount,
		Currency:  tx.Currency,
	})
}

// Purchase handles POST /api/videos/{id}/purchase.
func (h *PaymentHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}

	var req domain.VerifyPaymentRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	res, err := h.svc.Purchase(r.Context(), userID, chi.URLParam(r, "id"), req.Reference)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, res)
}
