package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fashionPulse/app/echo-server/router"
	"fashionPulse/business/attribution"
	"fashionPulse/business/events"
	"fashionPulse/business/experiment"
	"fashionPulse/business/funnel"
	"fashionPulse/business/ranking"
	"fashionPulse/business/signals"
	"fashionPulse/internal/middleware"
	"fashionPulse/internal/repository/catalog"
	psqlRepo "fashionPulse/internal/repository/postgres"
	redisRepo "fashionPulse/internal/repository/redis"
	"fashionPulse/internal/repository/similarity"
	"fashionPulse/internal/rest"
	"fashionPulse/pkg/config"
	"fashionPulse/pkg/database"
	redisDB "fashionPulse/pkg/database/redis"
	"fashionPulse/pkg/logger"
	"fashionPulse/pkg/metrics"
	"fashionPulse/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting FashionPulse", "version", cfg.App.Version)

	metrics.Init()
	utils.InitJWT(cfg.JWT.SecretKey)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := psqlRepo.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate schema", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is an accelerator and the attribution backend. Starting without
	// it degrades to process-local attribution and uncached signals.
	var attributionStore attribution.Store
	var signalCache signals.ScoreCache
	if cfg.Redis.Enabled {
		redisClient, err := redisDB.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory attribution", "error", err)
			attributionStore = attribution.NewMemoryStore()
		} else {
			defer redisDB.CloseRedisClient(redisClient)
			attributionStore = redisRepo.NewAttributionRepository(redisClient, cfg.Attribution.TTL)
			signalCache = redisRepo.NewSignalCache(redisClient)
			logger.Info("Redis connected successfully")
		}
	} else {
		attributionStore = attribution.NewMemoryStore()
	}

	// Outbound clients
	similarityRepo := similarity.NewSimilarityRepository(similarity.Config{
		BaseURL: cfg.Similarity.BaseURL,
		Timeout: cfg.Similarity.Timeout,
	})
	catalogRepo := catalog.NewCatalogRepository(catalog.Config{
		BaseURL: cfg.Catalog.BaseURL,
	})

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	experimentCfgRepo := psqlRepo.NewExperimentConfigRepository(db)

	// Init service
	tracker := attribution.NewTracker(attributionStore, cfg.Attribution.TTL)
	assigner := experiment.NewAssigner(experimentCfgRepo, experiment.DefaultVariantSet())
	signalService := signals.NewService(eventRepo, signalCache, signals.Weights{
		View:      cfg.Signals.WeightView,
		AddToCart: cfg.Signals.WeightAddToCart,
		Purchase:  cfg.Signals.WeightPurchase,
		Wishlist:  cfg.Signals.WeightWishlist,
		Search:    cfg.Signals.WeightSearch,
	}, cfg.Signals.PopularityCacheTTL, cfg.Signals.AffinityCacheTTL)
	eventService := events.NewService(eventRepo, tracker)
	rankingService := ranking.NewService(similarityRepo, signalService, catalogRepo, assigner, tracker)
	funnelService := funnel.NewService(eventRepo, assigner)

	// Init handler
	eventHandler := rest.NewEventHandler(eventService, signalService)
	rankingHandler := rest.NewRankingHandler(rankingService)
	experimentHandler := rest.NewExperimentHandler(assigner, experimentCfgRepo)
	attributionHandler := rest.NewAttributionHandler(tracker)
	funnelHandler := rest.NewFunnelHandler(funnelService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupEventRoutes(api, eventHandler)
	router.SetupRankingRoutes(api, rankingHandler)
	router.SetupExperimentRoutes(api, experimentHandler)
	router.SetupExperimentAdminRoutes(api, experimentHandler)
	router.SetupAttributionRoutes(api, attributionHandler)
	router.SetupFunnelRoutes(api, funnelHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
