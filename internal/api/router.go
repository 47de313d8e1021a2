package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/makerspace/membership-service/docs"
	"github.com/makerspace/membership-service/internal/api/handler"
	"github.com/makerspace/membership-service/internal/api/middleware"
	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Auth       ports.AuthService
	Membership ports.MembershipService
	Members    ports.MemberService
	Roles      ports.RoleSyncService
	Reconcile  ports.ReconcileService
	Chat       ports.ChatService
	Dedup      ports.WebhookDeduper
	Audit      ports.WebhookEventRepository
	Verifier   middleware.SignatureVerifier
	Health     map[string]handler.HealthCheck
	JWTSecret  string
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("membership_http"))

	authHandler := handler.NewAuthHandler(d.Auth)
	webhookHandler := handler.NewWebhookHandler(d.Membership, d.Dedup, d.Audit, d.Log.With().Str("component", "webhook").Logger())
	memberHandler := handler.NewMemberHandler(d.Members)
	adminHandler := handler.NewAdminHandler(d.Roles, d.Reconcile)
	chatHandler := handler.NewChatHandler(d.Chat)
	healthHandler := handler.NewHealthHandler(d.Health)

	// --- Square webhooks (signature auth) ---
	e.POST("/webhooks/square", webhookHandler.Square, middleware.SquareSignature(d.Verifier))

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	v1.POST("/sponsorships/checkout", memberHandler.SponsorshipCheckout)

	admin := middleware.RBAC(domain.RoleAdmin)
	members := v1.Group("/members/:userID", middleware.SelfOrRole("userID", domain.RoleAdmin))
	members.GET("", memberHandler.Get)
	members.PUT("/creator-types", memberHandler.UpdateCreatorTypes)
	members.POST("/subscribe", memberHandler.Subscribe)
	members.POST("/chat-invite", chatHandler.Invite)
	members.POST("/role-sync", adminHandler.RoleSync, admin)

	v1.POST("/admin/reconcile", adminHandler.Reconcile, admin)
	v1.POST("/admin/announcements", chatHandler.Announce, admin)

	// --- Operations (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger logs one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
