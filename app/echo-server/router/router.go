package router

import (
	"github.com/labstack/echo/v4"

	"fashionPulse/internal/middleware"
	"fashionPulse/internal/rest"
)

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler) {
	events := api.Group("/events")
	events.POST("", handler.Ingest)

	aggregates := events.Group("/aggregates")
	aggregates.GET("/popularity", handler.Popularity)
	aggregates.GET("/affinity", handler.Affinity)
}

func SetupRankingRoutes(api *echo.Group, handler *rest.RankingHandler) {
	reco := api.Group("/recommendations", middleware.OptionalAuthMiddleware())
	reco.GET("", handler.Recommend)
	reco.POST("/rank", handler.RecommendWithBody)
}

func SetupExperimentRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	exp := api.Group("/experiments", middleware.OptionalAuthMiddleware())
	exp.GET("/variants", handler.Variants)
	exp.GET("/assignment", handler.Assignment)
}

func SetupExperimentAdminRoutes(api *echo.Group, handler *rest.ExperimentHandler) {
	admin := api.Group("/admin/experiments", middleware.AuthMiddleware(), middleware.AdminOnly())
	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)
}

func SetupAttributionRoutes(api *echo.Group, handler *rest.AttributionHandler) {
	sessions := api.Group("/sessions")
	sessions.POST("/:session_id/end", handler.EndSession)
}

func SetupFunnelRoutes(api *echo.Group, handler *rest.FunnelHandler) {
	metrics := api.Group("/metrics")
	metrics.GET("/funnel", handler.Funnel)
}
