package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/api/routes"
	"github.com/ArowuTest/skinjackpot-backend/internal/clock"
	"github.com/ArowuTest/skinjackpot-backend/internal/config"
	"github.com/ArowuTest/skinjackpot-backend/internal/handlers"
	"github.com/ArowuTest/skinjackpot-backend/internal/metrics"
	mongorepo "github.com/ArowuTest/skinjackpot-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/ArowuTest/skinjackpot-backend/pkg/codecache"
	"github.com/ArowuTest/skinjackpot-backend/pkg/jwt"
	"github.com/ArowuTest/skinjackpot-backend/pkg/mongodb"
	"github.com/ArowuTest/skinjackpot-backend/pkg/realtime"
	"github.com/ArowuTest/skinjackpot-backend/pkg/steamapi"
	"github.com/ArowuTest/skinjackpot-backend/pkg/tradebot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/exp/slog"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database()

	// Repositories
	jackpotRepo := mongorepo.NewJackpotRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	itemRepo := mongorepo.NewItemRepository(db)
	payoutRepo := mongorepo.NewPayoutRepository(db)
	priceRepo := mongorepo.NewMarketPriceRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)
	settingsRepo := mongorepo.NewSystemSettingsRepository(db)
	for name, ensure := range map[string]func(context.Context) error{
		"jackpots": jackpotRepo.EnsureIndexes,
		"users":    userRepo.EnsureIndexes,
		"items":    itemRepo.EnsureIndexes,
		"admins":   adminRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			slog.Error("Failed to create indexes", "collection", name, "error", err)
			os.Exit(1)
		}
	}

	codes, err := codecache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.CodeTTL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer codes.Close()

	// Metrics and realtime
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hub := realtime.NewHub(cfg.Server.AllowedOrigins, m.SetActiveObservers)
	notifier := realtime.Fanout{hub}
	kafkaSink := realtime.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if kafkaSink != nil {
		notifier = append(notifier, kafkaSink)
		slog.Info("Streaming round events to Kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}

	// External clients
	steam := steamapi.NewClient(cfg.Steam.APIKey, cfg.Steam.MockAPI)
	trade := tradebot.NewClient(cfg.TradeBot.BaseURL, cfg.TradeBot.APIKey, cfg.TradeBot.MockAPI)
	tokens := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	if cfg.TradeBot.HouseTradeURL == "" {
		slog.Warn("TradeBot.HouseTradeURL is not set; commission items stay in escrow")
	}

	// Services
	realClock := clock.New()
	settingsService := services.NewSystemSettingsService(settingsRepo, cfg.Jackpot.CommissionPercentage)
	payoutService := services.NewPayoutService(payoutRepo, userRepo, trade, realClock, m, services.PayoutOptions{
		HouseTradeURL:  cfg.TradeBot.HouseTradeURL,
		OfferDelay:     cfg.TradeBot.OfferDelay,
		PollInterval:   cfg.TradeBot.PollInterval,
		PollMaxElapsed: cfg.TradeBot.PollMaxElapsed,
	})
	jackpotService := services.NewJackpotService(
		jackpotRepo, userRepo, itemRepo,
		settingsService, payoutService, notifier,
		services.NewWeightedSelector(nil), realClock, m,
		services.JackpotOptions{
			RoundDuration:   cfg.Jackpot.RoundDuration,
			InterRoundDelay: cfg.Jackpot.InterRoundDelay,
			SpinDelay:       cfg.Jackpot.SpinDelay,
			SpinDuration:    cfg.Jackpot.SpinDuration,
			MinParticipants: cfg.Jackpot.MinParticipants,
			HistoryWindow:   cfg.Jackpot.HistoryWindow,
		},
	)
	userService := services.NewUserService(userRepo)
	inventoryService := services.NewInventoryService(steam, userRepo, itemRepo, priceRepo, cfg.Steam.AppID, cfg.Steam.ContextID)
	authService := services.NewAuthService(steam, codes, tokens, userRepo, adminRepo, cfg.Server.FrontendURL, cfg.Server.BackendURL)

	if err := jackpotService.Recover(ctx); err != nil {
		slog.Error("Failed to recover open round", "error", err)
		os.Exit(1)
	}

	router := routes.SetupRouter(cfg, routes.Handlers{
		Jackpot:   handlers.NewJackpotHandler(jackpotService),
		User:      handlers.NewUserHandler(userService),
		Inventory: handlers.NewInventoryHandler(inventoryService),
		Auth:      handlers.NewAuthHandler(authService, cfg.Server.FrontendURL),
		Payout:    handlers.NewPayoutHandler(payoutService),
		Settings:  handlers.NewSystemSettingsHandler(settingsService),
		WS:        handlers.NewWSHandler(hub),
		Health:    mongoClient.Ping,
	}, tokens, registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop timers first so no round completes while the server drains
	jackpotService.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	hub.Close()
	if err := payoutService.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Payouts still running at shutdown", "error", err)
	}
	if err := kafkaSink.Close(); err != nil {
		slog.Warn("Failed to flush Kafka sink", "error", err)
	}
	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}
