// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gisvideo/backend/internal/config"
	"github.com/gisvideo/backend/internal/handler"
	"github.com/gisvideo/backend/internal/metrics"
	appMiddleware "github.com/gisvideo/backend/internal/middleware"
	"github.com/gisvideo/backend/internal/service"
	"github.com/gisvideo/backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Config    *config.Config
	Log       *zerolog.Logger
	Identity  *service.IdentityService
	Users     *service.UserService
	Dashboard *service.DashboardService
	Catalog   *service.CatalogService
	Access    *service.AccessService
	Payments  *service.PaymentService
	Stats     *service.StatsService
	Checks    map[string]handler.Check
}

// Router is the storefront's HTTP handler.
type Router struct {
	chi.Router
	limiters []*appMiddleware.RateLimiter
}

// Close stops background work owned by the router.
func (rt *Router) Close() {
	for _, l := range rt.limiters {
		l.Stop()
	}
}

// NewRouter wires handlers, middleware and routes.
func NewRouter(d Deps) *Router {
	metrics.MustRegister()

	healthHandler := handler.NewHealthHandler(d.Checks)
	configHandler := handler.NewConfigHandler(d.Config.Paystack.PublicKey)
	videoHandler := handler.NewVideoHandler(d.Catalog, d.Access)
	paymentHandler := handler.NewPaymentHandler(d.Payments)
	userHandler := handler.NewUserHandler(d.Users, d.Dashboard)
	adminHandler := handler.NewAdminHandler(d.Stats)
	liveHandler := ws.NewAccessHandler(d.Identity, d.Catalog, d.Access, d.Config.CORSOrigins, *d.Log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(appMiddleware.RequestID)
	r.Use(appMiddleware.Logger(d.Log))
	r.Use(appMiddleware.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limiter (20 req/sec per IP, burst of 40)
	globalRL := appMiddleware.NewRateLimiter(20, 40)
	strictRL := appMiddleware.NewStrictRateLimiter()
	r.Use(globalRL.Middleware())

	// Public routes
	r.Get("/api/health", healthHandler.Live)
	r.Get("/api/health/ready", healthHandler.Ready)
	r.Get("/config", configHandler.Get)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/videos", videoHandler.List)
	r.Get("/api/videos/{id}", videoHandler.Get)

	// Live access snapshots (auth via query param)
	r.Get("/api/videos/{id}/access/live", liveHandler.Handle)

	// Gateway-backed routes
	r.Group(func(r chi.Router) {
		r.Use(strictRL.Middleware())
		r.Post("/api/verify-payment", paymentHandler.Verify)
		r.With(appMiddleware.Auth(d.Identity)).Post("/api/videos/{id}/purchase", paymentHandler.Purchase)
	})

	// Protected API routes
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Auth(d.Identity))

		r.Post("/api/session", userHandler.Session)
		r.Get("/api/me", userHandler.Me)
		r.Get("/api/me/dashboard", userHandler.Dashboard)

		r.Get("/api/videos/{id}/access", videoHandler.Access)
		r.Get("/api/videos/{id}/stream", videoHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.AdminOnly)
			r.Get("/api/admin/stats", adminHandler.GetStats)
		})
	})

	return &Router{Router: r, limiters: []*appMiddleware.RateLimiter{globalRL, strictRL}}
}

var _ http.Handler = (*Router)(nil)
