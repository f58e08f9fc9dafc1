package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/handler"
	"github.com/iliyamo/telehealth-core/internal/middleware"
	"github.com/iliyamo/telehealth-core/internal/model"
)

// RegisterPrescriptions registers the prescription workflow.  Doctors
// issue, patients answer affordability, both can list.  Ownership of a
// prescription is checked by the service.
func RegisterPrescriptions(e *echo.Echo, h *handler.PrescriptionHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/prescriptions", middleware.JWTAuth(jwtSecret), limit)
	g.POST("", h.Issue, middleware.RequireRole(model.RoleDoctor))
	g.GET("", h.List, middleware.RequireRole(model.RoleDoctor, model.RolePatient))
	g.POST("/:id/affordability", h.Affordability, middleware.RequireRole(model.RolePatient))
}

// RegisterDiagnosis registers the symptom checker.  The catalog is public
// and cached; predictions need a token.
func RegisterDiagnosis(e *echo.Echo, h *handler.DiagnosisHandler, jwtSecret string, limit, cache echo.MiddlewareFunc) {
	e.GET("/v1/diagnosis/catalog", h.Catalog, cache)
	e.POST("/v1/diagnosis", h.Diagnose, middleware.JWTAuth(jwtSecret), limit)
}
