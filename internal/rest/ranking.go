package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"fashionPulse/business/ranking"
	"fashionPulse/domain"
)

type (
	RankingHandler struct {
		validate       *validator.Validate
		rankingService RankingService
	}

	RankingService interface {
		Rank(ctx context.Context, req ranking.Request) (domain.RankingResult, error)
	}

	RecommendQuery struct {
		SessionID string `query:"session_id" validate:"required"`
		ActorID   string `query:"actor_id"`
		SeedItems string `query:"seed_items"`
		N         int    `query:"n"`
	}

	RecommendRequest struct {
		SessionID string              `json:"session_id" validate:"required"`
		ActorID   string              `json:"actor_id"`
		SeedItems []string            `json:"seed_items"`
		Override  *domain.WeightTuple `json:"override"`
		Limit     int                 `json:"limit"`
	}
)

func NewRankingHandler(rankingService RankingService) *RankingHandler {
	return &RankingHandler{
		validate:       validator.New(),
		rankingService: rankingService,
	}
}

// GET /api/v1/recommendations?session_id=&actor_id=&seed_items=a,b&n=
func (h *RankingHandler) Recommend(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	// Authenticated requests carry the actor id from the token; the query
	// parameter only serves anonymous integrations.
	actorID := q.ActorID
	if v, ok := c.Get("actor_id").(string); ok && v != "" {
		actorID = v
	}

	req := ranking.Request{
		ActorID:   actorID,
		SessionID: q.SessionID,
		SeedItems: splitSeedItems(q.SeedItems),
		Limit:     q.N,
	}

	result, err := h.rankingService.Rank(c.Request().Context(), req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

// POST /api/v1/recommendations/rank
//
// The body form exists for weight-tuple overrides and large seed lists that
// do not fit a query string.
func (h *RankingHandler) RecommendWithBody(c echo.Context) error {
	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	actorID := req.ActorID
	if v, ok := c.Get("actor_id").(string); ok && v != "" {
		actorID = v
	}

	result, err := h.rankingService.Rank(c.Request().Context(), ranking.Request{
		ActorID:   actorID,
		SessionID: req.SessionID,
		SeedItems: req.SeedItems,
		Override:  req.Override,
		Limit:     req.Limit,
	})
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}

func splitSeedItems(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
