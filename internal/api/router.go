package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/creatorhub/session-gateway/internal/api/handler"
	"github.com/creatorhub/session-gateway/internal/api/middleware"
	"github.com/creatorhub/session-gateway/internal/core/domain"
	"github.com/creatorhub/session-gateway/internal/core/ports"
	"github.com/creatorhub/session-gateway/internal/infrastructure/http/handlers"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Resolver      ports.SessionResolver
	Notifications ports.NotificationService
	Upstream      handlers.UpstreamPinger
	Mongo         *mongo.Database
	Redis         *redis.Client
	JWTSecret     string
	LoginRoute    string
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Guard composition order is load-bearing: session resolution first, then the
// authentication guard, then whichever of the profile/role guards the subtree
// needs — a guard must never run before the state it branches on exists.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("session_gateway"))

	session := middleware.Session(deps.Resolver, deps.JWTSecret)
	authGuard := middleware.AuthGuard(deps.LoginRoute)
	profileGuard := middleware.ProfileGuard()
	adminGuard := middleware.RoleGuard(domain.RoleAdmin)

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(deps.Resolver)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)

	// --- Session surface (no guards: the shell needs it before auth) ---
	e.GET("/session", sessionHandler.Current, session)
	e.POST("/session/logout", sessionHandler.Logout, session)

	// --- Dashboard subtree: auth + profile completeness ---
	dashboard := e.Group("/dashboard", session, authGuard, profileGuard)
	dashboard.GET("", sessionHandler.Dashboard)
	dashboard.GET("/notifications", notificationHandler.List)
	dashboard.POST("/notifications/read", notificationHandler.MarkAllRead)

	// --- Setup routes: wrapped by the same profile guard so it passes its
	// own target through instead of redirect-looping ---
	e.GET(domain.SetupRouteInfluencer, sessionHandler.Setup, session, authGuard, profileGuard)
	e.GET(domain.SetupRouteUser, sessionHandler.Setup, session, authGuard, profileGuard)

	// --- Admin subtree: silent deny for everyone else ---
	admin := e.Group("/admin", session, authGuard, adminGuard)
	admin.POST("/notifications", notificationHandler.Push)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Mongo, deps.Redis, deps.Upstream)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
