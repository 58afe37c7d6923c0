package services

import (
	"context"
	"net/url"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JackpotService defines the round state machine operations
type JackpotService interface {
	// Join stakes items of a user into the open round
	Join(ctx context.Context, req models.JoinRequest) (*models.Jackpot, error)

	// EndRound completes an in_progress round exactly once
	EndRound(ctx context.Context, jackpotID primitive.ObjectID) error

	// Recover resumes timers of the open round after a restart
	Recover(ctx context.Context) error

	// GetCurrent returns the open round with populated participants
	GetCurrent(ctx context.Context) (*models.JackpotView, error)

	// History returns rounds completed within the history window
	History(ctx context.Context) ([]*models.JackpotView, error)

	// LastCompleted returns the most recent completed rounds
	LastCompleted(ctx context.Context) ([]*models.JackpotView, error)

	// Timer reports the running countdowns
	Timer() models.TimerStatus
}

// PayoutService defines payout dispatch and remediation operations
type PayoutService interface {
	PayoutDispatcher

	// Settle sends the offers of a round and waits for the sends, not the acceptance
	Settle(ctx context.Context, st Settlement) []PayoutResult

	// Retry re-sends a failed payout
	Retry(ctx context.Context, id primitive.ObjectID) (PayoutResult, error)

	// List returns payouts in a status
	List(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error)

	// ListForJackpot returns the payouts of one round
	ListForJackpot(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error)
}

// InventoryService defines inventory synchronisation operations
type InventoryService interface {
	Sync(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error)
	Available(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error)
}

// AuthService defines the login operations
type AuthService interface {
	SteamLoginURL() string
	CompleteSteamLogin(ctx context.Context, params url.Values) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	AdminLogin(ctx context.Context, req models.LoginRequest) (string, error)
}

// UserService defines player profile operations
type UserService interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SaveTradeURL(ctx context.Context, id primitive.ObjectID, tradeURL string) error
	Statistics(ctx context.Context, id primitive.ObjectID) (*models.UserStatistics, error)
}

// SystemSettingsService defines game settings operations
type SystemSettingsService interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SystemSettings) error
}
