package handlers

import (
	"errors"
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrMissingUserID),
		errors.Is(err, services.ErrNoItems),
		errors.Is(err, services.ErrInvalidItemID),
		errors.Is(err, services.ErrInvalidTradeURL),
		errors.Is(err, services.ErrInvalidSettings),
		errors.Is(err, services.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPayoutNotFound),
		errors.Is(err, services.ErrRoundNotActive):
		return http.StatusNotFound
	case errors.Is(err, services.ErrItemsUnavailable),
		errors.Is(err, services.ErrIntermission),
		errors.Is(err, services.ErrJoinsPaused),
		errors.Is(err, services.ErrTransitionConflict),
		errors.Is(err, services.ErrPayoutNotRetryable):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoTradeURL):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// hidden from the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "path", c.FullPath(), "requestId", c.GetString("RequestID"), "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
