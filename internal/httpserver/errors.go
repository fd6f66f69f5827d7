package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPaymentValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrDependency):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail logs a service error under op and turns it into an HTTP error carrying
// the error's own message. Unexpected errors are not echoed to the client.
func fail(l *slog.Logger, op, reason string, err error) error {
	code := statusFor(err)
	if code >= http.StatusInternalServerError && code != http.StatusBadGateway {
		l.Error(op+"_error", "status", code, "reason", reason, "error", err)
		return echo.NewHTTPError(code, reason)
	}

	l.Warn(op+"_error", "status", code, "reason", reason, "error", err)

	var ve *service.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return echo.NewHTTPError(code, map[string]any{
			"message": err.Error(),
			"fields":  ve.Fields,
		})
	}
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
