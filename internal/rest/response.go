package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"fashionPulse/domain"
)

type ResponseError struct {
	Message string `json:"message"`
}

// errorStatus maps domain sentinels onto HTTP statuses. Validation problems
// are the caller's fault, unavailable dependencies are a gateway condition,
// anything else is ours.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
}

// parseWindow reads the optional start_date/end_date query parameters. Both
// RFC 3339 timestamps and bare dates are accepted; a bare end date is pushed
// to the end of that day so windows are inclusive.
func parseWindow(c echo.Context) (domain.TimeRange, error) {
	var window domain.TimeRange

	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := parseTimeParam(raw, false)
		if err != nil {
			return domain.TimeRange{}, err
		}
		window.Start = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := parseTimeParam(raw, true)
		if err != nil {
			return domain.TimeRange{}, err
		}
		window.End = &t
	}

	return window, nil
}

func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", raw, domain.ErrValidation)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
