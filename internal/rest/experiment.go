package rest

import (
	"net/http"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"

	"fashionPulse/business/experiment"
	"fashionPulse/domain"
)

type ExperimentHandler struct {
	assigner *experiment.Assigner
	cfgRepo  experiment.ConfigRepository
}

func NewExperimentHandler(assigner *experiment.Assigner, cfgRepo experiment.ConfigRepository) *ExperimentHandler {
	return &ExperimentHandler{
		assigner: assigner,
		cfgRepo:  cfgRepo,
	}
}

// GET /api/v1/experiments/variants
func (h *ExperimentHandler) Variants(c echo.Context) error {
	set := h.assigner.ActiveSet(c.Request().Context())
	return c.JSON(http.StatusOK, fres.Response.StatusOK(set))
}

// GET /api/v1/experiments/assignment?actor_id=&session_id=
func (h *ExperimentHandler) Assignment(c echo.Context) error {
	actorID := c.QueryParam("actor_id")
	if v, ok := c.Get("actor_id").(string); ok && v != "" {
		actorID = v
	}

	assignment, err := h.assigner.Assign(c.Request().Context(), actorID, c.QueryParam("session_id"))
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(assignment))
}

// GET /api/v1/admin/experiments/config
func (h *ExperimentHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	set, ok, err := h.cfgRepo.GetActiveSet(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}
	if !ok {
		set = experiment.DefaultVariantSet()
	}

	return c.JSON(http.StatusOK, set)
}

// PUT /api/v1/admin/experiments/config
// body: VariantSet JSON
func (h *ExperimentHandler) UpsertConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var body domain.VariantSet
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid body: " + err.Error(),
		})
	}

	if err := experiment.ValidateSet(body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	if body.Version <= 0 {
		current, ok, err := h.cfgRepo.GetActiveSet(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": err.Error(),
			})
		}
		body.Version = 1
		if ok {
			body.Version = current.Version + 1
		}
	}

	if err := h.cfgRepo.SaveSet(ctx, body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"version": body.Version,
	})
}
