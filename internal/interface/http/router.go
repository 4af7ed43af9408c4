package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/learnmate/internal/infra/config"
	"github.com/yanqian/learnmate/pkg/metrics"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *RoadmapHandler, recorder *metrics.Recorder, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	log := logger.With("component", "http")

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(log),
		metricsMiddleware(recorder),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(log),
	)

	router.GET("/health", handler.Health)
	if cfg.Metrics.Enabled && recorder != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(recorder.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(
		bodyLimitMiddleware(cfg.HTTP.MaxBodyBytes),
		rateLimitMiddleware(cfg.HTTP.RateLimit, log),
		authMiddleware(cfg.Auth),
	)
	{
		api.POST("/roadmaps", handler.Generate)
		api.POST("/roadmaps/batch", handler.GenerateBatch)
		api.POST("/roadmaps/jobs", handler.SubmitJob)
		api.GET("/roadmaps/jobs/:id", handler.Job)
		api.GET("/users/:userId/roadmap", handler.Latest)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, cfg.HTTP.MaxBodyBytes, log),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
