package http

import (
	"errors"
	"net/http"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"
	apperrors "srtmon/pkg/errors"
	"srtmon/pkg/logger"

	"github.com/gin-gonic/gin"
)

type MonitorHandler struct {
	monitor ports.StatsMonitor
}

func NewMonitorHandler(monitor ports.StatsMonitor) *MonitorHandler {
	return &MonitorHandler{monitor: monitor}
}

func (h *MonitorHandler) SetupRoutes(api *gin.RouterGroup) {
	api.GET("/stats", h.GetStats)
	api.POST("/stats/poll", h.PollStats)
	api.DELETE("/stats", h.ClearStats)
}

func (h *MonitorHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Report())
}

// PollStats runs one poll and answers with the resulting report. Logs for the
// request carry the polled stream.
func (h *MonitorHandler) PollStats(c *gin.Context) {
	target := h.monitor.Settings()
	if target.StreamID != "" {
		c.Request = c.Request.WithContext(logger.WithStreamID(c.Request.Context(), string(target.StreamID)))
	}
	if err := h.monitor.Poll(c.Request.Context()); err != nil {
		_ = c.Error(pollError(err, target))
		return
	}
	c.JSON(http.StatusOK, h.monitor.Report())
}

func (h *MonitorHandler) ClearStats(c *gin.Context) {
	if err := h.monitor.Clear(c.Request.Context()); err != nil {
		_ = c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to clear stats", http.StatusInternalServerError))
		return
	}
	c.Status(http.StatusNoContent)
}

func pollError(err error, target domain.MonitorSettings) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, domain.ErrMalformedStats):
		appErr = apperrors.NewBadGatewayError(err, "stats endpoint returned malformed data")
	case errors.Is(err, domain.ErrStatsUnavailable):
		appErr = apperrors.NewServiceUnavailableError(err, "stats endpoint unreachable")
	default:
		appErr = apperrors.WrapError(err, apperrors.ErrCodeInternal, "poll failed", http.StatusInternalServerError)
	}
	return appErr.WithContext("statsUrl", target.StatsURL)
}
