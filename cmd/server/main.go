package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"astro-server/internal/cache"
	"astro-server/internal/chart"
	"astro-server/internal/ephemeris"
	"astro-server/internal/events"
	"astro-server/internal/geocode"
	"astro-server/internal/middleware"
	"astro-server/internal/progression"
	"astro-server/internal/server"
	"astro-server/internal/shared/config"
	"astro-server/internal/shared/database"
	"astro-server/internal/shared/logger"
	"astro-server/internal/shared/redis"
	"astro-server/internal/transit"
)

func main() {
	if err := config.Init(); err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}
	logger.Init()
	cfg := config.GlobalConfig

	slog.Info("Starting astro server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	db, err := database.Connect()
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if db != nil {
		if err := db.RunMigrations(); err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.Connect()
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	var cacheFacade *cache.Facade
	if cfg.Cache.Enabled {
		var store cache.Store
		if redisClient != nil {
			store = cache.NewRedisStore(redisClient.Client)
		} else {
			store = cache.NewMemoryStore()
		}
		cacheFacade = cache.NewFacade(store, slog.Default())
	}

	publisher := events.NewPublisher(slog.Default())
	defer publisher.Close()

	provider := ephemeris.NewAnalyticProvider(cfg.Ephemeris.MinYear, cfg.Ephemeris.MaxYear)

	var chartRepo *chart.Repository
	if db != nil {
		chartRepo = chart.NewRepository(db.DB)
	}
	chartService := chart.NewService(provider, chartRepo, cacheFacade, slog.Default())
	transitSearch := transit.NewSearch(provider, slog.Default())
	progressionService := progression.NewService(provider, chartService, slog.Default())
	resolver := geocode.NewHTTPResolver(cacheFacade, slog.Default())

	slog.Info("Services initialized",
		"database", db != nil,
		"cache", cacheFacade != nil,
		"events", cfg.Kafka.Enabled,
	)

	routes := server.NewRoutes(db, chartService, transitSearch, progressionService, resolver, cacheFacade, publisher, slog.Default())
	mux := routes.Setup()

	corsMiddleware := middleware.NewCORS()
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		Enabled:           cfg.RateLimit.Enabled,
		TrustProxy:        cfg.RateLimit.TrustProxy,
	})
	apiKey := middleware.NewAPIKey()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(apiKey.Middleware(mux)))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
