package router

import (
	"fmt"
	"net/http"

	"github.com/anonto42/quartfeed/internal/cache"
	"github.com/anonto42/quartfeed/internal/handlers"
	"github.com/anonto42/quartfeed/internal/middleware"
	"github.com/anonto42/quartfeed/internal/models"
	"github.com/anonto42/quartfeed/internal/repositories"
	"github.com/anonto42/quartfeed/internal/session"
	"github.com/anonto42/quartfeed/internal/views"
	"github.com/anonto42/quartfeed/pkg/config"
	"github.com/anonto42/quartfeed/pkg/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// NewEcho creates an Echo instance with the renderer, validator, error
// handler and global middleware every app shares.
func NewEcho(log *zap.Logger) (*echo.Echo, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(log)

	SetupMiddleware(e, log)
	return e, nil
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(eMiddleware.Recover())
	log.Debug("Global middleware configured")
}

// SetupHelloRoutes mounts the hello app.
func SetupHelloRoutes(e *echo.Echo) {
	handlers.NewHelloHandler("World!").RegisterHelloRoutes(e.Group(""))
	e.GET("/health", handlers.HealthCheck)
}

// SetupCounterRoutes mounts the counter app.
func SetupCounterRoutes(e *echo.Echo, counterRepo repositories.CounterRepository) {
	handlers.NewCounterHandler(counterRepo).RegisterCounterRoutes(e.Group(""))
	e.GET("/health", handlers.HealthCheck)
}

// NewCounterRepository picks the counter store named by cfg.CounterStore.
func NewCounterRepository(cfg *config.Config, db *config.DB) (repositories.CounterRepository, error) {
	switch cfg.CounterStore {
	case config.CounterStoreMongo:
		if db.Mongo == nil {
			return nil, fmt.Errorf("counter store %q needs MONGO_URI", cfg.CounterStore)
		}
		return repositories.NewMongoCounterRepository(db.Mongo.Database(cfg.MongoDatabase)), nil
	case config.CounterStoreSQL, "":
		if err := models.AutoMigrate(db.SQL, models.CounterModels...); err != nil {
			return nil, fmt.Errorf("failed to migrate counter: %w", err)
		}
		return repositories.NewPostgresCounterRepository(db.SQL), nil
	default:
		return nil, fmt.Errorf("unknown counter store %q", cfg.CounterStore)
	}
}

// SetupFeedRoutes migrates the feed tables and mounts the feed app: the
// session-backed site, the JWT API and the health check.
func SetupFeedRoutes(e *echo.Echo, cfg *config.Config, db *gorm.DB, store cache.Cache, log *zap.Logger) error {
	if err := models.AutoMigrate(db, models.FeedModels...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("Feed migrations completed")

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(db)

	sessions := session.NewManager(store, session.Config{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.SessionSecure,
	}, log)
	e.Use(sessions.Middleware())

	credentialLimit := loginRateLimiter(cfg.LoginRateLimit)

	authHandler := handlers.NewAuthHandler(userRepo, sessions, handlers.AuthConfig{
		CSRFEnabled: cfg.CSRFEnabled,
		JWTSecret:   cfg.JWTSecret,
		JWTTTL:      cfg.JWTTTL,
	}, log)
	userHandler := handlers.NewUserHandler(userRepo, relationshipRepo)
	followHandler := handlers.NewFollowHandler(relationshipRepo, userRepo, cfg.CSRFEnabled, log)

	// --- Browser routes ---
	site := e.Group("")
	handlers.NewHomeHandler(relationshipRepo).RegisterHomeRoutes(site)
	authHandler.RegisterAuthRoutes(site, credentialLimit)
	userHandler.RegisterProfileRoutes(site, middleware.LoginRequired)
	followHandler.RegisterFollowRoutes(site, middleware.LoginRequired)

	// --- API routes ---
	authHandler.RegisterTokenRoutes(e.Group("/api/v1/auth"), credentialLimit)

	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userHandler.RegisterAPIRoutes(api)
	followHandler.RegisterAPIRoutes(api)

	log.Info("Feed routes configured")
	return nil
}

// loginRateLimiter throttles credential checks per client IP.
func loginRateLimiter(perSecond float64) echo.MiddlewareFunc {
	return eMiddleware.RateLimiterWithConfig(eMiddleware.RateLimiterConfig{
		Store: eMiddleware.NewRateLimiterMemoryStoreWithConfig(eMiddleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(perSecond),
			Burst: max(1, int(perSecond)),
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many attempts, try again later")
		},
	})
}
