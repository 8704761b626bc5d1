package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fashionPulse/domain"
	"fashionPulse/pkg/logger"
)

// ErrorHandler is the echo HTTPErrorHandler. Handlers normally map domain
// errors themselves; this catches whatever escapes, so an unhandled error
// never leaks a stack trace to a client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrDependencyUnavailable):
		status = http.StatusBadGateway
		message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		logger.Error("unhandled request error", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	if jsonErr := c.JSON(status, echo.Map{"error": message}); jsonErr != nil {
		logger.Error("failed to write error response", "error", jsonErr)
	}
}
