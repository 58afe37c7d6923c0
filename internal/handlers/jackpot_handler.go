package handlers

import (
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/middleware"
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// JackpotHandler handles round-related HTTP requests
type JackpotHandler struct {
	jackpotService services.JackpotService
}

// NewJackpotHandler creates a new JackpotHandler
func NewJackpotHandler(jackpotService services.JackpotService) *JackpotHandler {
	return &JackpotHandler{
		jackpotService: jackpotService,
	}
}

// Join handles POST /jackpotSystem/join. The user is taken from the token;
// a userId in the body is ignored.
func (h *JackpotHandler) Join(c *gin.Context) {
	var req models.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.UserID = c.GetString(middleware.ContextUserID)

	jackpot, err := h.jackpotService.Join(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined jackpot", "jackpot": jackpot})
}

// Status handles GET /jackpotSystem/status
func (h *JackpotHandler) Status(c *gin.Context) {
	view, err := h.jackpotService.GetCurrent(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// History handles GET /jackpotSystem/history
func (h *JackpotHandler) History(c *gin.Context) {
	views, err := h.jackpotService.History(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// LastFour handles GET /jackpotSystem/last-four-jackpots
func (h *JackpotHandler) LastFour(c *gin.Context) {
	views, err := h.jackpotService.LastCompleted(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Timer handles GET /jackpotSystem/timer
func (h *JackpotHandler) Timer(c *gin.Context) {
	c.JSON(http.StatusOK, h.jackpotService.Timer())
}
