package http

import (
	"net/http"
	"time"

	"srtmon/internal/core/ports"
	"srtmon/internal/infrastructure/live"
	"srtmon/internal/infrastructure/middleware"
	"srtmon/internal/infrastructure/monitoring"
	"srtmon/pkg/config"
	"srtmon/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.SugaredLogger
	Monitor  ports.StatsMonitor
	Settings ports.SettingsService
	Health   *monitoring.HealthChecker
	Live     *live.Feed
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Started time.Time
}

// NewRouter assembles the API: middleware first, then monitor, settings,
// live feed and health routes.
func NewRouter(d RouterDeps) *gin.Engine {
	ctxLogger := logger.NewContextLogger(d.Logger)

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(ctxLogger),
		middleware.RequestIDMiddleware(ctxLogger),
		middleware.TracingMiddleware(),
		middleware.ErrorHandlerMiddleware(ctxLogger),
	)

	NewHealthHandler(d.Health, d.Started).SetupRoutes(router)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.NewHTTPRateLimitMiddleware(d.Config))
	NewMonitorHandler(d.Monitor).SetupRoutes(api)
	NewSettingsHandler(d.Settings).SetupRoutes(api)
	if d.Live != nil {
		api.GET("/stats/ws", gin.WrapF(d.Live.HandleWebSocket))
	}

	return router
}
