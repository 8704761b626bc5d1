package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"fashionPulse/business/events"
	"fashionPulse/domain"
)

type (
	EventHandler struct {
		validate      *validator.Validate
		eventService  EventService
		signalService SignalService
	}

	EventService interface {
		IngestBatch(ctx context.Context, raw []events.RawEvent) (events.IngestResult, error)
	}

	SignalService interface {
		Popularity(ctx context.Context, window domain.TimeRange, limit int) ([]domain.ItemScore, error)
		Affinity(ctx context.Context, actorID string, window domain.TimeRange, limit int) ([]domain.ItemScore, error)
	}

	IngestRequest struct {
		Events []events.RawEvent `json:"events" validate:"required,min=1"`
	}
)

func NewEventHandler(eventService EventService, signalService SignalService) *EventHandler {
	return &EventHandler{
		validate:      validator.New(),
		eventService:  eventService,
		signalService: signalService,
	}
}

// POST /api/v1/events
func (h *EventHandler) Ingest(c echo.Context) error {
	var req IngestRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	result, err := h.eventService.IngestBatch(c.Request().Context(), req.Events)
	if err != nil {
		var batchErr *events.BatchValidationError
		if errors.As(err, &batchErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": batchErr.Error(),
				"errors":  batchErr.Errors,
			})
		}
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(result))
}

// GET /api/v1/events/aggregates/popularity?start_date=&end_date=&limit=
func (h *EventHandler) Popularity(c echo.Context) error {
	window, err := parseWindow(c)
	if err != nil {
		return jsonError(c, err)
	}

	scores, err := h.signalService.Popularity(c.Request().Context(), window, queryLimit(c))
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(scores))
}

// GET /api/v1/events/aggregates/affinity?actor_id=&start_date=&end_date=&limit=
func (h *EventHandler) Affinity(c echo.Context) error {
	window, err := parseWindow(c)
	if err != nil {
		return jsonError(c, err)
	}

	scores, err := h.signalService.Affinity(c.Request().Context(), c.QueryParam("actor_id"), window, queryLimit(c))
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(scores))
}

func queryLimit(c echo.Context) int {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
