package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/handler"
	"github.com/iliyamo/telehealth-core/internal/middleware"
)

// Deps collects what Mount needs.  RateLimit and Cache may be nil.
type Deps struct {
	DB            *sql.DB
	JWTSecret     string
	Auth          *handler.AuthHandler
	Chat          *handler.ChatHandler
	Prescriptions *handler.PrescriptionHandler
	Diagnosis     *handler.DiagnosisHandler
	RateLimit     echo.MiddlewareFunc
	Cache         echo.MiddlewareFunc
}

// Mount registers every route of the API on e.
func Mount(e *echo.Echo, d Deps) {
	limit := orNoop(d.RateLimit)
	RegisterRoutes(e, d.DB)
	RegisterAuth(e, d.Auth, d.JWTSecret, limit)
	RegisterChat(e, d.Chat, d.JWTSecret, limit)
	RegisterPrescriptions(e, d.Prescriptions, d.JWTSecret, limit)
	RegisterDiagnosis(e, d.Diagnosis, d.JWTSecret, limit, orNoop(d.Cache))
}

// RegisterRoutes registers routes that do not require authentication:
// liveness and readiness checks.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
}

// RegisterAuth registers account and presence routes.  Register and login
// live under /v1/auth without a token; the rest need one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limit)
	auth.GET("/me", a.Me)
	auth.GET("/presence/:role", a.Presence)
}

func orNoop(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}
