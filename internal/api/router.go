package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jerseyhub/gallery-system/internal/api/handler"
	"github.com/jerseyhub/gallery-system/internal/api/middleware"
	"github.com/jerseyhub/gallery-system/internal/core/ports"
)

// Dependencies carries the wired services the router exposes over HTTP.
type Dependencies struct {
	Auth       ports.AuthService
	Catalog    ports.CatalogService
	Downloads  ports.DownloadService
	Moderation ports.ModerationService
	Admin      ports.AdminService
	Points     ports.PointsService
	Feed       *handler.FeedHub

	Mongo     *mongo.Database
	Redis     *redis.Client
	Broker    handler.BrokerPinger
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("gallery"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	designHandler := handler.NewDesignHandler(deps.Catalog, deps.Downloads)
	adminHandler := handler.NewAdminHandler(deps.Moderation, deps.Admin, deps.Points)

	requireAuth := middleware.Auth(deps.JWTSecret, deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.JWTSecret, deps.Auth)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis, deps.Broker)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Auth routes ---
	auth := e.Group("/api/v1/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/logout", authHandler.Logout)

	// --- Catalog routes ---
	designs := e.Group("/api/v1/designs")
	designs.GET("", designHandler.List)
	designs.GET("/stats", designHandler.Stats)
	designs.GET("/feed", deps.Feed.Subscribe)
	designs.POST("", designHandler.Upload, requireAuth)
	designs.POST("/:id/download", designHandler.Download, optionalAuth)
	designs.POST("/:id/delete-request", designHandler.RequestDelete, requireAuth)

	// --- Admin routes ---
	admin := e.Group("/api/v1/admin", requireAuth, middleware.RequireAdmin())
	admin.GET("/designs/pending", adminHandler.PendingDesigns)
	admin.POST("/designs/:id/approve", adminHandler.ApproveDesign)
	admin.POST("/designs/:id/reject", adminHandler.RejectDesign)
	admin.GET("/delete-requests", adminHandler.PendingRequests)
	admin.POST("/delete-requests/:id/approve", adminHandler.ApproveRequest)
	admin.POST("/delete-requests/:id/reject", adminHandler.RejectRequest)
	admin.GET("/users", adminHandler.Users)
	admin.POST("/users/:id/ban", adminHandler.SetBanned)
	admin.POST("/users/:id/points", adminHandler.Recharge)

	return e
}
