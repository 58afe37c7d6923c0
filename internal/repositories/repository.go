package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrConflict is returned when a conditional write matched no document
// because the stored state moved on since it was read.
var ErrConflict = errors.New("conditional write conflict")

// ErrDuplicate is returned when an insert hits a unique key.
var ErrDuplicate = errors.New("duplicate key")

// RoundTransition describes the fields written by a status transition
type RoundTransition struct {
	To          models.RoundStatus
	Winner      *primitive.ObjectID
	Draw        *models.DrawAudit
	StartedAt   *time.Time
	EndsAt      *time.Time
	CompletedAt *time.Time
}

// JackpotRepository defines the interface for round data operations
type JackpotRepository interface {
	EnsureIndexes(ctx context.Context) error
	// FindActive returns the round in waiting or in_progress, or mongo.ErrNoDocuments.
	FindActive(ctx context.Context) (*models.Jackpot, error)
	// FindOrCreateActive returns the open round, creating a waiting one when none exists.
	FindOrCreateActive(ctx context.Context, commissionPercentage int) (*models.Jackpot, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Jackpot, error)
	// AppendParticipant pushes an entry and sets totalValue if the round is
	// still open at expectedVersion. Returns ErrConflict otherwise.
	AppendParticipant(ctx context.Context, id primitive.ObjectID, expectedVersion int64, participant models.Participant, totalValue float64) (*models.Jackpot, error)
	// Transition moves a round from one status to another if it is still at
	// expectedVersion. Returns ErrConflict otherwise.
	Transition(ctx context.Context, id primitive.ObjectID, expectedVersion int64, from models.RoundStatus, t RoundTransition) (*models.Jackpot, error)
	FindCompletedSince(ctx context.Context, since time.Time) ([]*models.Jackpot, error)
	FindLastCompleted(ctx context.Context, limit int64) ([]*models.Jackpot, error)
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	FindBySteamID(ctx context.Context, steamID string) (*models.User, error)
	UpsertSteamProfile(ctx context.Context, profile models.SteamProfile) (*models.User, error)
	SetTradeURL(ctx context.Context, id primitive.ObjectID, tradeURL string) error
	// ApplyRoundOutcome adds one round's statistics to a user and appends the
	// history entry. It is a no-op returning false when the user already has
	// an entry for entry.JackpotID.
	ApplyRoundOutcome(ctx context.Context, id primitive.ObjectID, entry models.GameHistoryEntry) (bool, error)
}

// ItemRepository defines the interface for inventory item operations
type ItemRepository interface {
	EnsureIndexes(ctx context.Context) error
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Item, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]*models.Item, error)
	// Claim stakes unstaked items of owner into a round under entryID and
	// returns how many were claimed.
	Claim(ctx context.Context, owner primitive.ObjectID, ids []primitive.ObjectID, jackpotID primitive.ObjectID, entryID string) (int64, error)
	// Release unstakes every item claimed under entryID.
	Release(ctx context.Context, entryID string) error
	InsertMany(ctx context.Context, items []*models.Item) error
	// DeleteMissing removes unstaked items of owner whose asset ids are not in keep.
	DeleteMissing(ctx context.Context, owner primitive.ObjectID, keep []string) (int64, error)
}

// PayoutRepository defines the interface for payout tracking
type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payout, error)
	FindByStatus(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error)
	FindByJackpot(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PayoutStatus, offerID, errMsg string) error
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) error
	SetDestination(ctx context.Context, id primitive.ObjectID, destination string) error
}

// MarketPriceRepository defines the interface for reference price lookups
type MarketPriceRepository interface {
	FindByNames(ctx context.Context, names []string) (map[string]float64, error)
	UpsertMany(ctx context.Context, prices []models.MarketPrice) (int64, error)
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, adminUser *models.AdminUser) (*models.AdminUser, error)
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

// SystemSettingsRepository defines the interface for game settings
type SystemSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SystemSettings) error
}
