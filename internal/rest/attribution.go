package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	AttributionHandler struct {
		tracker AttributionTracker
	}

	AttributionTracker interface {
		EndSession(ctx context.Context, sessionID string) error
	}
)

func NewAttributionHandler(tracker AttributionTracker) *AttributionHandler {
	return &AttributionHandler{tracker: tracker}
}

// POST /api/v1/sessions/:session_id/end
func (h *AttributionHandler) EndSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "session_id is required"})
	}

	if err := h.tracker.EndSession(c.Request().Context(), sessionID); err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("session ended"))
}
