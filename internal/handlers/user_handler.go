package handlers

import (
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/middleware"
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles player profile HTTP requests
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// currentUserID reads the authenticated user from the context
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// GetMe handles GET /api/user
func (h *UserHandler) GetMe(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SaveTradeURL handles POST /jackpotSystem/save-trade-url
func (h *UserHandler) SaveTradeURL(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.SaveTradeURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.SaveTradeURL(c, id, req.TradeURL); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trade URL saved successfully"})
}

// Statistics handles GET /jackpotSystem/statistics
func (h *UserHandler) Statistics(c *gin.Context) {
	id, ok := currentUserID(c)
	if !ok {
		return
	}
	stats, err := h.userService.Statistics(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
