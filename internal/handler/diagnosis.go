package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/diagnosis"
	"github.com/iliyamo/telehealth-core/internal/service"
)

type DiagnosisHandler struct {
	Svc *service.Service
	Log *slog.Logger
}

func NewDiagnosisHandler(svc *service.Service, log *slog.Logger) *DiagnosisHandler {
	return &DiagnosisHandler{Svc: svc, Log: log}
}

type diagnoseReq struct {
	Symptoms []string `json:"symptoms"`
}

// Diagnose returns a predicted disease and suggested drug.
func (h *DiagnosisHandler) Diagnose(c echo.Context) error {
	var req diagnoseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	res, err := h.Svc.Diagnose(c.Request().Context(), req.Symptoms)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Catalog lists the disease-to-drug table.
func (h *DiagnosisHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"entries": diagnosis.Catalog()})
}
