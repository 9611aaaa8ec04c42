// Package bootstrap builds the storage, cache, search and service graph shared
// by the API server and the hbnbctl command.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/hbnb-project/hbnb/backend/internal/adapters/cache"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/database"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/events"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/memory"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/search"
	"github.com/hbnb-project/hbnb/backend/internal/adapters/security"
	"github.com/hbnb-project/hbnb/backend/internal/application/services"
	"github.com/hbnb-project/hbnb/backend/internal/domain/providers"
	"github.com/hbnb-project/hbnb/backend/internal/domain/repositories"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/postgres"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/redis"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/clients/typesense"
	"github.com/hbnb-project/hbnb/backend/internal/infrastructure/observability"
	"github.com/hbnb-project/hbnb/backend/pkg/config"
)

// Repositories groups the four collections
type Repositories struct {
	Users     repositories.UserRepository
	Places    repositories.PlaceRepository
	Reviews   repositories.ReviewRepository
	Amenities repositories.AmenityRepository
}

// Services groups the application services
type Services struct {
	Users     *services.UserService
	Amenities *services.AmenityService
	Places    *services.PlaceService
	Reviews   *services.ReviewService
	Auth      *services.AuthService
	Seed      *services.SeedService
}

// App is the wired application. Cache and Search are nil when disabled.
type App struct {
	Config       *config.Config
	Repos        Repositories
	Services     Services
	Cache        providers.CacheProvider
	EventBus     providers.EventBus
	Search       *search.TypesenseAdapter
	HealthChecks map[string]func(context.Context) error

	invalidation *services.CacheInvalidationService
	closers      []func() error
}

// Options tunes what New starts.
type Options struct {
	// Invalidation subscribes the HTTP cache to change events. Only the server needs it.
	Invalidation bool
}

// New connects the configured backends and wires the services on top of them.
// Redis and Typesense failures degrade to in-process fallbacks; a PostgreSQL failure is fatal.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := observability.GetLogger()
	app := &App{
		Config:       cfg,
		HealthChecks: map[string]func(context.Context) error{},
	}

	if err := app.initStorage(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	var revocations providers.RevocationStore = memory.NewRevocationStore()
	app.EventBus = events.NewLocalEventBus()

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without HTTP cache")
		} else {
			app.closers = append(app.closers, redisClient.Close)
			app.HealthChecks["redis"] = redisClient.Ping
			app.Cache = cache.NewRedisAdapter(redisClient)
			revocations = cache.NewRevocationStore(redisClient)
			_ = app.EventBus.Close()
			app.EventBus = events.NewRedisEventBus(redisClient)
		}
	}
	app.closers = append(app.closers, app.EventBus.Close)

	var searchRepo repositories.PlaceSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("typesense unavailable, place search runs in-process")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("typesense schema init failed, place search runs in-process")
			} else {
				app.Search = adapter
				searchRepo = adapter
			}
		}
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry, cfg.Auth.RefreshTokenExpiry)

	s := &app.Services
	s.Users = services.NewUserService(app.Repos.Users, hasher)
	s.Amenities = services.NewAmenityService(app.Repos.Amenities)
	s.Places = services.NewPlaceService(app.Repos.Places, app.Repos.Users, app.Repos.Amenities, searchRepo)
	s.Places.SetStrictAmenities(cfg.Places.StrictAmenities)
	s.Users.SetPlaceService(s.Places)
	s.Amenities.SetPlaceService(s.Places)
	s.Reviews = services.NewReviewService(app.Repos.Reviews, app.Repos.Places, app.Repos.Users)
	s.Auth = services.NewAuthService(app.Repos.Users, s.Users, hasher, tokens, revocations)
	s.Seed = services.NewSeedService(s.Users, s.Amenities)

	s.Users.SetEventBus(app.EventBus)
	s.Amenities.SetEventBus(app.EventBus)
	s.Places.SetEventBus(app.EventBus)
	s.Reviews.SetEventBus(app.EventBus)

	if opts.Invalidation && app.Cache != nil {
		app.invalidation = services.NewCacheInvalidationService(app.Cache, app.EventBus)
		if err := app.invalidation.Start(); err != nil {
			logger.Warn().Err(err).Msg("cache invalidation not started")
			app.invalidation = nil
		}
	}

	return app, nil
}

func (a *App) initStorage(ctx context.Context) error {
	logger := observability.GetLogger()

	switch a.Config.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		a.Repos = Repositories{
			Users:     store.Users(),
			Places:    store.Places(),
			Reviews:   store.Reviews(),
			Amenities: store.Amenities(),
		}
		logger.Info().Msg("using in-memory storage")
		return nil

	case config.StorageDriverPostgres:
		pgClient, err := postgres.NewClient(&a.Config.Database)
		if err != nil {
			return fmt.Errorf("initializing PostgreSQL client: %w", err)
		}
		a.closers = append(a.closers, pgClient.Close)
		a.HealthChecks["database"] = pgClient.Ping

		if a.Config.Database.AutoMigrate {
			if err := database.Migrate(ctx, pgClient); err != nil {
				return fmt.Errorf("migrating schema: %w", err)
			}
		}
		a.Repos = Repositories{
			Users:     database.NewUserAdapter(pgClient),
			Places:    database.NewPlaceAdapter(pgClient),
			Reviews:   database.NewReviewAdapter(pgClient),
			Amenities: database.NewAmenityAdapter(pgClient),
		}
		return nil
	}
	return fmt.Errorf("unsupported storage driver %q", a.Config.Storage.Driver)
}

// SeedDefaults creates the administrator and default amenities from config.
func (a *App) SeedDefaults(ctx context.Context) (*services.SeedResult, error) {
	return a.Services.Seed.Seed(ctx, services.SeedOptions{
		AdminEmail:    a.Config.Seed.AdminEmail,
		AdminPassword: a.Config.Seed.AdminPassword,
	})
}

// Close stops background work and releases every connection.
func (a *App) Close() error {
	if a.invalidation != nil {
		a.invalidation.Stop()
		a.invalidation = nil
	}
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}
