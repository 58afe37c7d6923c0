package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayoutHandler exposes payout remediation to operators
type PayoutHandler struct {
	payoutService services.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(payoutService services.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// List handles GET /admin/payouts?status=failed&limit=50 and
// GET /admin/payouts?jackpotId=...
func (h *PayoutHandler) List(c *gin.Context) {
	if raw := c.Query("jackpotId"); raw != "" {
		jackpotID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid jackpot ID format"})
			return
		}
		payouts, err := h.payoutService.ListForJackpot(c, jackpotID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payouts)
		return
	}

	status := models.PayoutStatus(c.DefaultQuery("status", string(models.PayoutStatusFailed)))
	switch status {
	case models.PayoutStatusPending, models.PayoutStatusSent, models.PayoutStatusAccepted,
		models.PayoutStatusDeclined, models.PayoutStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	payouts, err := h.payoutService.List(c, status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payouts)
}

// Retry handles POST /admin/payouts/:id/retry
func (h *PayoutHandler) Retry(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	result, err := h.payoutService.Retry(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"payoutId": result.PayoutID, "outcome": result.Outcome, "offerId": result.OfferID, "assets": result.Assets}
	if result.Err != nil {
		body["error"] = result.Err.Error()
	}
	c.JSON(http.StatusOK, body)
}
