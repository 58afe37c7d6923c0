package handlers

import (
	"net/http"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slog"
)

// AuthHandler handles Steam and admin authentication requests
type AuthHandler struct {
	authService services.AuthService
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
	}
}

// SteamLogin handles GET /auth/steam
func (h *AuthHandler) SteamLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, h.authService.SteamLoginURL())
}

// SteamReturn handles GET /auth/steam/return
func (h *AuthHandler) SteamReturn(c *gin.Context) {
	redirect, err := h.authService.CompleteSteamLogin(c, c.Request.URL.Query())
	if err != nil {
		slog.Warn("Steam login failed", "error", err)
		c.Redirect(http.StatusFound, h.frontendURL+"/auth-callback?error=login_failed")
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

// Exchange handles POST /auth/exchange
func (h *AuthHandler) Exchange(c *gin.Context) {
	var req models.CodeExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.authService.ExchangeCode(c, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// AdminLogin handles POST /admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.authService.AdminLogin(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
