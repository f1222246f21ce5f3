package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"storefront-api/internal/app"
	"storefront-api/internal/config"
	"storefront-api/internal/database"
	"storefront-api/internal/http/handler"
	"storefront-api/internal/http/middleware"
	"storefront-api/internal/http/router"
	"storefront-api/internal/observability"
	"storefront-api/internal/repository"
	"storefront-api/internal/security"
	"storefront-api/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	observability.NewLogger,
	provideRuntime,
)

var RuntimeInfraSet = wire.NewSet(
	provideDB,
	provideRateLimitBackend,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewRefreshTokenRepository,
	repository.NewProductRepository,
)

var SecuritySet = wire.NewSet(
	provideTokenCodec,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	service.NewAuthService,
	service.NewCatalogService,
	provideTokenJanitor,
)

var HTTPSet = wire.NewSet(
	provideAuthHandler,
	provideCatalogHandler,
	handler.NewUserHandler,
	provideRouterDependencies,
	router.New,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideRuntime(cfg *config.Config, logger *slog.Logger) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger)
}

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// provideRateLimitBackend prefers Redis so limits hold across replicas;
// without REDIS_URL each process counts on its own.
func provideRateLimitBackend(cfg *config.Config, logger *slog.Logger) (middleware.Limiter, error) {
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, rate limits are per-process")
		return middleware.NewLocalLimiter(), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return middleware.NewRedisLimiter(redis.NewClient(opts)), nil
}

func provideTokenCodec(cfg *config.Config) *security.TokenCodec {
	return security.NewTokenCodec(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieSameSite)
}

func provideTokenJanitor(tokens repository.RefreshTokenRepository, logger *slog.Logger) *service.TokenJanitor {
	return service.NewTokenJanitor(tokens, logger, time.Hour)
}

func provideAuthHandler(auth *service.AuthService, cookies *security.CookieManager, cfg *config.Config) *handler.AuthHandler {
	return handler.NewAuthHandler(auth, cookies, !cfg.IsProduction())
}

func provideCatalogHandler(catalog *service.CatalogService, cfg *config.Config) *handler.CatalogHandler {
	return handler.NewCatalogHandler(catalog, !cfg.IsProduction())
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	auth *service.AuthService,
	backend middleware.Limiter,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		UserHandler:      userHandler,
		CatalogHandler:   catalogHandler,
		Authenticator:    auth,
		ExposeAuthErrors: !cfg.IsProduction(),
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
		RateLimitBackend: backend,
		EnableOTelHTTP:   cfg.OTELEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
