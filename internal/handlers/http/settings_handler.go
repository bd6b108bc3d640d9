package http

import (
	"errors"
	"net/http"

	"srtmon/internal/core/domain"
	"srtmon/internal/core/ports"
	apperrors "srtmon/pkg/errors"
	"srtmon/pkg/validation"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settings ports.SettingsService
}

func NewSettingsHandler(settings ports.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) SetupRoutes(api *gin.RouterGroup) {
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.PutSettings)
}

type settingsRequest struct {
	StatsURL       string `json:"statsUrl"`
	StreamID       string `json:"streamId"`
	PollIntervalMs int    `json:"pollIntervalMs" binding:"min=0,max=3600000"`
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.settings.Get())
}

// PutSettings replaces the whole record. A store failure still applies the
// settings in memory and is reported as 503.
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validateSettings(req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError(err.Error()))
		return
	}

	next := domain.ViewerSettings{
		StatsURL:       req.StatsURL,
		StreamID:       domain.StreamID(req.StreamID),
		PollIntervalMs: req.PollIntervalMs,
	}

	if err := h.settings.Set(c.Request.Context(), next); err != nil {
		if errors.Is(err, domain.ErrSlotStore) {
			_ = c.Error(apperrors.NewServiceUnavailableError(err, "settings applied but not persisted"))
			return
		}
		_ = c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to apply settings", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, h.settings.Get())
}

// validateSettings allows an empty record, which leaves the monitor
// unconfigured.
func validateSettings(req settingsRequest) error {
	if req.StatsURL != "" {
		if err := validation.ValidateStatsURL(req.StatsURL); err != nil {
			return err
		}
	}
	if req.StreamID != "" {
		if err := validation.ValidateStreamID(req.StreamID); err != nil {
			return err
		}
	}
	return nil
}
