package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/telehealth-core/internal/diagnosis"
	"github.com/iliyamo/telehealth-core/internal/service"
	"github.com/iliyamo/telehealth-core/internal/video"
)

// statusFor maps a service error onto an HTTP status and a client message.
// Unknown errors become 500 with a generic message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyBody),
		errors.Is(err, video.ErrInvalidParticipants):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrNotBound):
		return http.StatusUnauthorized, "session expired; log in again"
	case errors.Is(err, service.ErrInvalidActor),
		errors.Is(err, service.ErrUnauthorizedPeer):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrAlreadyResolved),
		errors.Is(err, service.ErrAlreadyBound),
		errors.Is(err, service.ErrNoPeer):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrStoreTimeout):
		return http.StatusGatewayTimeout, service.ErrStoreTimeout.Error()
	case errors.Is(err, service.ErrEscalationFailed):
		return http.StatusInternalServerError, service.ErrEscalationFailed.Error()
	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, diagnosis.ErrPredict):
		return http.StatusBadGateway, diagnosis.ErrPredict.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail writes err as {"error": ...}.  Server-side failures are logged with
// the full chain; client errors are not.
func fail(c echo.Context, log *slog.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Any("err", err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}
