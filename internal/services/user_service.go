package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

var _ UserService = (*UserServiceImpl)(nil)

var (
	tradePartnerPattern = regexp.MustCompile(`^\d+$`)
	tradeTokenPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{8}$`)
)

// UserServiceImpl handles player profile business logic
type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserServiceImpl
func NewUserService(userRepo repositories.UserRepository) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo: userRepo,
	}
}

// GetUser retrieves a user by ID
func (s *UserServiceImpl) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// SaveTradeURL validates and stores the user's payout destination
func (s *UserServiceImpl) SaveTradeURL(ctx context.Context, id primitive.ObjectID, tradeURL string) error {
	if !ValidTradeURL(tradeURL) {
		return ErrInvalidTradeURL
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.userRepo.SetTradeURL(ctx, id, tradeURL); err != nil {
		return fmt.Errorf("failed to save trade url: %w", err)
	}
	slog.Info("Trade url saved", "userId", id.Hex())
	return nil
}

// Statistics returns the running totals and round history of a user
func (s *UserServiceImpl) Statistics(ctx context.Context, id primitive.ObjectID) (*models.UserStatistics, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	history := user.GameHistory
	if history == nil {
		history = []models.GameHistoryEntry{}
	}
	return &models.UserStatistics{
		Deposited:   user.Deposited,
		TotalWon:    user.TotalWon,
		Profit:      user.Profit,
		GameHistory: history,
	}, nil
}

// ValidTradeURL reports whether raw is a Steam trade offer link with a
// partner id and token
func ValidTradeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host != "steamcommunity.com" || (u.Path != "/tradeoffer/new/" && u.Path != "/tradeoffer/new") {
		return false
	}
	q := u.Query()
	return tradePartnerPattern.MatchString(q.Get("partner")) && tradeTokenPattern.MatchString(q.Get("token"))
}
