package rest

import (
	"context"
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"fashionPulse/business/funnel"
	"fashionPulse/domain"
)

type (
	FunnelHandler struct {
		funnelService FunnelService
	}

	FunnelService interface {
		Aggregate(ctx context.Context, q funnel.Query) (domain.FunnelReport, error)
	}
)

func NewFunnelHandler(funnelService FunnelService) *FunnelHandler {
	return &FunnelHandler{funnelService: funnelService}
}

// GET /api/v1/metrics/funnel?start_date=&end_date=&variant=
func (h *FunnelHandler) Funnel(c echo.Context) error {
	window, err := parseWindow(c)
	if err != nil {
		return jsonError(c, err)
	}

	report, err := h.funnelService.Aggregate(c.Request().Context(), funnel.Query{
		Window:  window,
		Variant: c.QueryParam("variant"),
	})
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}
