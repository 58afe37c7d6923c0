package handlers

import (
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// InventoryHandler serves the stakeable items of a player
type InventoryHandler struct {
	inventoryService services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService services.InventoryService) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
	}
}

// GetInventory handles GET /api/inventory. When Steam cannot be reached the
// items already known are returned with stale set.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.inventoryService.Sync(c, id)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"items": items, "stale": false})
		return
	}
	if statusFor(err) != http.StatusInternalServerError {
		respondError(c, err)
		return
	}

	slog.Warn("Inventory sync failed, serving stored items", "userId", id.Hex(), "error", err)
	items, availErr := h.inventoryService.Available(c, id)
	if availErr != nil {
		respondError(c, availErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "stale": true})
}
