package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/wyclub/member-system/docs"
	"github.com/wyclub/member-system/internal/api/handler"
	"github.com/wyclub/member-system/internal/api/middleware"
	"github.com/wyclub/member-system/internal/core/ports"
)

// Deps carries everything the router needs; services are constructed in main
// so the wiring stays in one place.
type Deps struct {
	DB         *mongo.Database
	RDB        *redis.Client
	Accounts   ports.AccountService
	Reconciler ports.Reconciler
	Stats      ports.StatsService
	Dispatcher handler.EventDispatcher
	JWTSecret  string
	Log        zerolog.Logger
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
	e.Use(echoprometheus.NewMiddleware("luncheon"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Accounts)
	profileHandler := handler.NewProfileHandler(d.Accounts)
	adminHandler := handler.NewAdminHandler(d.Stats)
	eventHandler := handler.NewEventHandler(d.Dispatcher)

	authMW := middleware.Auth(d.JWTSecret)
	stateMW := middleware.AuthState(d.Reconciler)

	// --- Public auth routes ---
	e.POST("/v1/auth/signup", authHandler.SignUp)
	e.POST("/v1/auth/signin", authHandler.SignIn)
	e.POST("/v1/auth/resend", authHandler.Resend)

	// --- Authenticated routes ---
	auth := e.Group("", authMW)
	auth.POST("/v1/auth/signout", authHandler.SignOut)
	auth.POST("/v1/auth/events", eventHandler.Receive)
	auth.POST("/v1/auth/events/batch", eventHandler.ReceiveBatch)

	me := e.Group("/v1/me", authMW, stateMW)
	me.GET("", profileHandler.Me)
	me.PATCH("", profileHandler.Update)
	me.POST("/refresh", profileHandler.Refresh)

	admin := e.Group("/v1/admin", authMW, stateMW, middleware.RequireAdmin())
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.RDB)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
