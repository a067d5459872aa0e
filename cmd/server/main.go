package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gisvideo/backend/internal/changefeed"
	"github.com/gisvideo/backend/internal/config"
	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/handler"
	"github.com/gisvideo/backend/internal/logging"
	"github.com/gisvideo/backend/internal/repository"
	"github.com/gisvideo/backend/internal/repository/docstore"
	"github.com/gisvideo/backend/internal/server"
	"github.com/gisvideo/backend/internal/service"
	"github.com/gisvideo/backend/pkg/payment"
	"github.com/rs/zerolog"
)

func main() {
	// Load .env file if present (for local development)
	loadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Dev())
	zerolog.DefaultContextLogger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Check{}

	// Change feed: in-process unless Redis is configured
	var feed changefeed.Feed
	if cfg.RedisURL != "" {
		rf, err := changefeed.NewRedisFeed(ctx, cfg.RedisURL, cfg.RedisPassword, *logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis change feed unavailable")
		}
		checks["redis"] = rf.Ping
		feed = rf
		logger.Info().Msg("redis change feed connected")
	} else {
		feed = changefeed.NewHub()
	}
	defer feed.Close()

	stores, closeStore, storeCheck, err := openStores(ctx, cfg, feed, *logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store unavailable")
	}
	defer closeStore()
	checks["store"] = storeCheck
	logger.Info().Str("driver", cfg.StoreDriver).Msg("store ready")

	catalogVideos := domain.DefaultCatalog()
	if cfg.CatalogFile != "" {
		catalogVideos, err = service.LoadCatalogFile(cfg.CatalogFile)
		if err != nil {
			logger.Fatal().Err(err).Str("file", cfg.CatalogFile).Msg("catalog load failed")
		}
	}

	catalogSvc := service.NewCatalogService(stores.Videos)
	if err := catalogSvc.Seed(ctx, catalogVideos); err != nil {
		logger.Fatal().Err(err).Msg("catalog seed failed")
	}
	logger.Info().Int("videos", len(catalogVideos)).Msg("catalog seeded")

	gateway := newGateway(cfg, catalogVideos, logger)

	identitySvc := service.NewIdentityService(cfg.IdentitySecret)
	accessSvc := service.NewAccessService(stores.Access, feed, *logger)

	sweeper := service.NewExpirySweeper(stores.Access, cfg.SweepInterval, *logger)
	sweeper.Start(ctx)

	router := server.NewRouter(server.Deps{
		Config:    cfg,
		Log:       logger,
		Identity:  identitySvc,
		Users:     service.NewUserService(stores.Users),
		Dashboard: service.NewDashboardService(stores, accessSvc, *logger),
		Catalog:   catalogSvc,
		Access:    accessSvc,
		Payments:  service.NewPaymentService(gateway, stores, *logger),
		Stats:     service.NewStatsService(stores),
		Checks:    checks,
	})
	defer router.Close()

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout must be 0 for WebSocket connections (they are long-lived)
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	logger.Info().Str("addr", addr).Str("gateway", gateway.Name()).Msg("video storefront listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server error")
	}
}

// openStores connects the configured backend and returns its repositories.
func openStores(ctx context.Context, cfg *config.Config, pub changefeed.Publisher, log zerolog.Logger) (service.Stores, func(), handler.Check, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := repository.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return service.Stores{}, nil, nil, err
		}
		if err := repository.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return service.Stores{}, nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return service.Stores{
			Users:    repository.NewUserRepository(pool),
			Videos:   repository.NewVideoRepository(pool),
			Payments: repository.NewPaymentRepository(pool),
			Access:   repository.NewAccessRepository(pool, pub, log),
		}, pool.Close, pool.Ping, nil

	default:
		db, err := docstore.Open(cfg.BoltPath)
		if err != nil {
			return service.Stores{}, nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("bolt close failed")
			}
		}
		return service.Stores{
			Users:    docstore.NewUserRepository(db),
			Videos:   docstore.NewVideoRepository(db),
			Payments: docstore.NewPaymentRepository(db),
			Access:   docstore.NewAccessRepository(db, pub, log),
		}, closeFn, func(context.Context) error { return db.Ping() }, nil
	}
}

// newGateway picks the payment gateway. The mock settles every reference at
// the first catalog entry's price.
func newGateway(cfg *config.Config, videos []domain.Video, log *zerolog.Logger) payment.Gateway {
	if cfg.Gateway == config.GatewayMock {
		log.Warn().Msg("mock payment gateway enabled; every reference verifies")
		price, currency := int64(0), domain.DefaultCurrency
		if len(videos) > 0 {
			price, currency = videos[0].Price, videos[0].Currency
		}
		return payment.NewMockGateway(price, currency)
	}
	if cfg.Paystack.SecretKey == "" {
		log.Warn().Msg("PAYSTACK_SECRET_KEY not set; payment verification will fail")
	}
	return payment.NewPaystackGateway(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL)
}

// loadDotEnv sets KEY=VALUE pairs from path without overriding the environment.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
}
