package handlers

import (
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/middleware"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SystemSettingsHandler serves the admin game settings
type SystemSettingsHandler struct {
	settingsService services.SystemSettingsService
}

func NewSystemSettingsHandler(settingsService services.SystemSettingsService) *SystemSettingsHandler {
	return &SystemSettingsHandler{settingsService: settingsService}
}

// settingsPatch carries only the fields an operator sent; the rest keep
// their stored values.
type settingsPatch struct {
	CommissionPercentage *int  `json:"commissionPercentage"`
	JoinsPaused          *bool `json:"joinsPaused"`
}

// GetSettings returns the effective settings, config defaults included
func (h *SystemSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings merges the request over the current settings and saves
// them under the calling admin's id
func (h *SystemSettingsHandler) UpdateSettings(c *gin.Context) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.CommissionPercentage == nil && patch.JoinsPaused == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no settings to update"})
		return
	}

	settings, err := h.settingsService.GetSettings(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if patch.CommissionPercentage != nil {
		settings.CommissionPercentage = *patch.CommissionPercentage
	}
	if patch.JoinsPaused != nil {
		settings.JoinsPaused = *patch.JoinsPaused
	}
	settings.UpdatedBy = c.GetString(middleware.ContextUserID)

	if err := h.settingsService.UpdateSettings(c, settings); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
