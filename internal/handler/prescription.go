package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/model"
	"github.com/iliyamo/telehealth-core/internal/service"
)

type PrescriptionHandler struct {
	Svc *service.Service
	Log *slog.Logger
}

func NewPrescriptionHandler(svc *service.Service, log *slog.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{Svc: svc, Log: log}
}

type issueReq struct {
	Patient string `json:"patient"` // optional; defaults to the current chat peer
	Text    string `json:"text"`
}
type affordabilityReq struct {
	CanAfford *bool `json:"can_afford"`
}
type resolutionResp struct {
	Prescription model.Prescription `json:"prescription"`
	Notified     []string           `json:"notified"`
	Warning      string             `json:"warning,omitempty"`
}

// Issue writes a prescription (doctors only).
func (h *PrescriptionHandler) Issue(c echo.Context) error {
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Svc.IssuePrescription(c.Request().Context(), sessionID(c), req.Patient, req.Text)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// List returns the caller's prescriptions: received for patients, issued
// for doctors.
func (h *PrescriptionHandler) List(c echo.Context) error {
	items, err := h.Svc.ListPrescriptions(c.Request().Context(), sessionID(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"prescriptions": items})
}

// Affordability records the patient's answer for prescription :id.  A
// missing escalation target is reported in "warning" with 200.
func (h *PrescriptionHandler) Affordability(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid prescription id"})
	}
	var req affordabilityReq
	if err := c.Bind(&req); err != nil || req.CanAfford == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "can_afford required"})
	}

	res, err := h.Svc.RecordAffordability(c.Request().Context(), sessionID(c), id, *req.CanAfford)
	if err != nil {
		return fail(c, h.Log, err)
	}
	out := resolutionResp{Prescription: res.Prescription, Notified: res.Notified}
	if out.Notified == nil {
		out.Notified = []string{}
	}
	if errors.Is(res.Warning, service.ErrNoEscalationTarget) {
		out.Warning = res.Warning.Error()
	}
	return c.JSON(http.StatusOK, out)
}
