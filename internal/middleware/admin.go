package middleware

import (
	"net/http"

	"github.com/gisvideo/backend/internal/contextkeys"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/handler"
)

// RoleAdmin is the identity role allowed into /api/admin.
const RoleAdmin = "admin"

// AdminOnly rejects callers whose token carries no admin role.
// Must run after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := r.Context().Value(contextkeys.UserRole).(string)
		if role != RoleAdmin {
			handler.Error(w, r, domain.ErrForbidden("forbidden: admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
