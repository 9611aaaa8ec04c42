package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hbnb-project/hbnb/backend/internal/api/handlers"
	"github.com/hbnb-project/hbnb/backend/internal/api/middleware"
	"github.com/hbnb-project/hbnb/backend/internal/api/routes"
	"github.com/hbnb-project/hbnb/backend/internal/bootstrap"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	"github.com/hbnb-project/hbnb/backend/pkg/config"
	"github.com/hbnb-project/hbnb/backend/pkg/secrets"
)

func main() {
	if err := run(); err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Secrets from Vault land in the environment before config is read
	vaultResult, vaultErr := secrets.ApplyVaultSecrets(ctx, secrets.LoadVaultConfigFromEnv())

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)
	logger := observability.GetLogger()

	if vaultErr != nil {
		return fmt.Errorf("loading vault secrets: %w", vaultErr)
	}
	if vaultResult.Enabled {
		logger.Info().
			Str("path", vaultResult.Path).
			Int("loaded", vaultResult.Loaded).
			Int("skipped", vaultResult.Skipped).
			Msg("vault secrets applied")
	}

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Invalidation: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error().Err(err).Msg("error releasing resources")
		}
	}()

	if cfg.Seed.OnStart {
		result, err := app.SeedDefaults(ctx)
		if err != nil {
			return fmt.Errorf("seeding initial data: %w", err)
		}
		logger.Info().
			Bool("admin_created", result.AdminCreated).
			Int("amenities_created", result.AmenitiesCreated).
			Msg("initial data ready")
	}

	checks := make(map[string]handlers.HealthCheck, len(app.HealthChecks))
	for name, check := range app.HealthChecks {
		checks[name] = check
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if app.Cache != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(app.Cache, metrics, middleware.DefaultCacheRoutes(routes.APIPrefix))
		logger.Info().Msg("HTTP response cache enabled")
	}

	svc := app.Services
	router := routes.NewRouter(
		routes.Handlers{
			Auth: handlers.NewAuthHandler(svc.Auth, app.Cache, handlers.LoginRateLimit{
				Limit:  cfg.Auth.LoginRateLimit,
				Window: cfg.Auth.LoginRateWindow,
			}, metrics),
			Users:     handlers.NewUserHandler(svc.Users),
			Amenities: handlers.NewAmenityHandler(svc.Amenities),
			Places:    handlers.NewPlaceHandler(svc.Places, svc.Reviews),
			Reviews:   handlers.NewReviewHandler(svc.Reviews),
			Health:    handlers.NewHealthHandler(cfg.OTEL.ServiceVersion, checks),
		},
		routes.Repositories{
			Users:     app.Repos.Users,
			Places:    app.Repos.Places,
			Amenities: app.Repos.Amenities,
		},
		svc.Auth,
		cfg.Server.AllowedOrigins,
		cacheMiddleware,
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", serverAddr).
			Str("storage", cfg.Storage.Driver).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("server shutting down")
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}
	logger.Info().Msg("server stopped")
	return nil
}
