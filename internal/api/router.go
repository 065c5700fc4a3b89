package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandwichlab/sandwich-api/internal/api/handler"
	"github.com/sandwichlab/sandwich-api/internal/api/middleware"
	"github.com/sandwichlab/sandwich-api/internal/core/service"
	"github.com/sandwichlab/sandwich-api/internal/infrastructure/config"
	mongodb "github.com/sandwichlab/sandwich-api/internal/infrastructure/db/mongo"
	redisdb "github.com/sandwichlab/sandwich-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("sandwich"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	restaurantRepo := mongodb.NewRestaurantRepository(db)
	sandwichRepo := mongodb.NewSandwichRepository(db)
	likeRepo := mongodb.NewLikeRepository(db)
	commentRepo := mongodb.NewCommentRepository(db)
	likeCache := redisdb.NewLikeCountCache(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	sandwichService := service.NewSandwichService(sandwichRepo, restaurantRepo, userRepo, log)
	engagementService := service.NewEngagementService(sandwichRepo, likeRepo, commentRepo, userRepo, likeCache, log)

	authHandler := handler.NewAuthHandler(authService)
	sandwichHandler := handler.NewSandwichHandler(sandwichService, cfg.CarouselLimit)
	engagementHandler := handler.NewEngagementHandler(engagementService)

	requireAuth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Sandwich routes ---
	// Submission accepts anonymous callers; a valid token attributes the
	// sandwich to its owner.
	v1 := e.Group("/v1")
	v1.POST("/sandwiches", sandwichHandler.Create, optionalAuth)
	v1.GET("/sandwiches", sandwichHandler.Discover, optionalAuth)
	v1.GET("/sandwiches/top-rated", sandwichHandler.TopRated)
	v1.GET("/sandwiches/recent", sandwichHandler.Recent)
	v1.GET("/sandwiches/:id", sandwichHandler.Get)

	// --- Engagement routes ---
	v1.POST("/sandwiches/:id/like", engagementHandler.ToggleLike, requireAuth)
	v1.GET("/sandwiches/:id/like", engagementHandler.LikeStatus, optionalAuth)
	v1.POST("/sandwiches/:id/comments", engagementHandler.AddComment, requireAuth)
	v1.GET("/sandwiches/:id/comments", engagementHandler.Comments)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
