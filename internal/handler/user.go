package handler

import (
	"net/http"

	"github.com/gisvideo/backend/internal/contextkeys"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/service"
)

// UserHandler handles the signed-in user's profile endpoints.
type UserHandler struct {
	users     *service.UserService
	dashboard *service.DashboardService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, dashboard *service.DashboardService) *UserHandler {
	return &UserHandler{users: users, dashboard: dashboard}
}

func claimsFrom(r *http.Request) *domain.IdentityClaims {
	ctx := r.Context()
	c := &domain.IdentityClaims{}
	c.Sub, _ = ctx.Value(contextkeys.UserID).(string)
	c.Email, _ = ctx.Value(contextkeys.UserEmail).(string)
	c.Name, _ = ctx.Value(contextkeys.UserName).(string)
	c.Role, _ = ctx.Value(contextkeys.UserRole).(string)
	return c
}

// Session handles POST /api/session. The body is optional.
func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims.Sub == "" {
		unauthorized(w)
		return
	}

	var req domain.SignInRequest
	if err := DecodeOptionalJSON(r, &req); err != nil {
		Error(w, r, err)
		return
	}

	user, created, err := h.users.SignIn(r.Context(), claims, req)
	if err != nil {
		Error(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	JSON(w, status, user)
}

// Me handles GET /api/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, user)
}

// Dashboard handles GET /api/me/dashboard.
func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	d, err := h.dashboard.Get(r.Context(), userID)
	if err != nil {
		Error(w, r, err)
		return
	}
	JSON(w, http.StatusOK, d)
}
