package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/config"
	"github.com/ArowuTest/skinjackpot-backend/internal/handlers"
	"github.com/ArowuTest/skinjackpot-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// Handlers groups everything the router serves
type Handlers struct {
	Jackpot   *handlers.JackpotHandler
	User      *handlers.UserHandler
	Inventory *handlers.InventoryHandler
	Auth      *handlers.AuthHandler
	Payout    *handlers.PayoutHandler
	Settings  *handlers.SystemSettingsHandler
	WS        *handlers.WSHandler
	// Health reports whether the backing store is reachable
	Health func(ctx context.Context) error
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.JWTAuthMiddleware(tokens)
	joinLimiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.JoinsPerSecond), cfg.RateLimit.Burst)

	router.GET("/api/v1/health", func(c *gin.Context) {
		if h.Health != nil {
			if err := h.Health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/ws", h.WS.Serve)

	// Steam login hand-off
	authRoutes := router.Group("/auth")
	{
		authRoutes.GET("/steam", h.Auth.SteamLogin)
		authRoutes.GET("/steam/return", h.Auth.SteamReturn)
		authRoutes.POST("/exchange", h.Auth.Exchange)
	}

	jackpot := router.Group("/jackpotSystem")
	{
		jackpot.GET("/status", h.Jackpot.Status)
		jackpot.GET("/history", h.Jackpot.History)
		jackpot.GET("/last-four-jackpots", h.Jackpot.LastFour)
		jackpot.GET("/timer", h.Jackpot.Timer)

		player := jackpot.Group("", auth, middleware.PlayerOnly())
		player.POST("/join", middleware.RateLimitMiddleware(joinLimiter), h.Jackpot.Join)
		player.POST("/save-trade-url", h.User.SaveTradeURL)
		player.GET("/statistics", h.User.Statistics)
	}

	api := router.Group("/api", auth, middleware.PlayerOnly())
	{
		api.GET("/user", h.User.GetMe)
		api.GET("/inventory", h.Inventory.GetInventory)
	}

	router.POST("/admin/login", h.Auth.AdminLogin)
	admin := router.Group("/admin", auth, middleware.AdminOnly())
	{
		admin.GET("/payouts", h.Payout.List)
		admin.POST("/payouts/:id/retry", h.Payout.Retry)
		admin.GET("/settings", h.Settings.GetSettings)
		admin.PUT("/settings", h.Settings.UpdateSettings)
	}

	return router
}
