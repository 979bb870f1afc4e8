package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/persome/account-system/internal/api/handler"
	"github.com/persome/account-system/internal/api/middleware"
	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
	"github.com/persome/account-system/internal/core/session"
)

// Deps carries everything the HTTP surface needs. All services are
// constructed by the caller; the router only wires routes.
type Deps struct {
	Auth        ports.AuthService
	Profiles    ports.ProfileService
	Personality ports.PersonalityService
	Coordinator *session.Coordinator
	Mongo       *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("persona"))

	authHandler := handler.NewAuthHandler(d.Auth)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	personalityHandler := handler.NewPersonalityHandler(d.Personality)
	sessionHandler := handler.NewSessionHandler(d.Coordinator)
	authMiddleware := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Session routes ---
	e.GET("/session", sessionHandler.State)
	e.GET("/session/permissions", sessionHandler.Permissions)

	// --- Profile routes (any signed-in role) ---
	profile := e.Group("/profile", authMiddleware,
		middleware.RequireRole(domain.RoleClient, domain.RoleAgent, domain.RoleAdmin))
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)
	profile.PUT("/avatar", profileHandler.UpdateAvatar)
	profile.PUT("/preferences", profileHandler.UpdatePreferences)

	// --- Personality routes ---
	personality := e.Group("/personality", authMiddleware,
		middleware.RequireRole(domain.RoleClient, domain.RoleAgent, domain.RoleAdmin))
	personality.POST("/results", personalityHandler.Save)
	personality.GET("/results", personalityHandler.List)
	personality.GET("/results/:id", personalityHandler.Get)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
