package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/99minutos/user-accounts/docs"
	"github.com/99minutos/user-accounts/internal/api/handler"
	"github.com/99minutos/user-accounts/internal/api/middleware"
	"github.com/99minutos/user-accounts/internal/core/domain"
	"github.com/99minutos/user-accounts/internal/core/ports"
)

const defaultLoginRate = 5

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users    ports.UserService
	Verifier ports.TokenVerifier
	BaseURL  string
	// LoginRate is the sustained number of login requests per second allowed
	// per client IP.
	LoginRate float64
	Ready     map[string]handler.PingFunc
	Log       zerolog.Logger
	// Registry receives the HTTP metrics and serves /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(deps.Registry)))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Users, deps.BaseURL)
	userHandler := handler.NewUserHandler(deps.Users, deps.BaseURL)
	authMiddleware := middleware.Auth(deps.Verifier)
	staff := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Login and registration ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login, loginRateLimiter(deps.LoginRate))
	e.GET("/verify-email/:user_id/:token", authHandler.VerifyEmail)
	e.POST("/verify-email/resend", authHandler.ResendVerification)
	e.POST("/users/verify-email/:token", authHandler.VerifyEmailByToken)

	// --- User management ---
	users := e.Group("/users", authMiddleware)
	users.GET("", userHandler.List, staff)
	users.POST("", userHandler.Create, staff)
	users.GET("/:id", userHandler.Get, staff)
	users.PUT("/:id", userHandler.Update, staff)
	users.DELETE("/:id", userHandler.Delete, staff)
	users.POST("/:id/unlock", userHandler.Unlock, adminOnly)
	users.PATCH("/:id/profile-picture", userHandler.UpdateProfilePicture)
	users.PATCH("/:id/professional", userHandler.UpdateProfessionalInfo)

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "users",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// loginRateLimiter throttles login attempts per client IP.
func loginRateLimiter(perSecond float64) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = defaultLoginRate
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     int(perSecond) * 2,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})
}
