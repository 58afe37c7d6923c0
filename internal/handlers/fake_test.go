package handlers

import (
	"context"
	"net/url"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FakeJackpotService struct {
	JoinFn          func(ctx context.Context, req models.JoinRequest) (*models.Jackpot, error)
	GetCurrentFn    func(ctx context.Context) (*models.JackpotView, error)
	HistoryFn       func(ctx context.Context) ([]*models.JackpotView, error)
	LastCompletedFn func(ctx context.Context) ([]*models.JackpotView, error)
	TimerFn         func() models.TimerStatus
}

func (f *FakeJackpotService) Join(ctx context.Context, req models.JoinRequest) (*models.Jackpot, error) {
	return f.JoinFn(ctx, req)
}

func (f *FakeJackpotService) EndRound(context.Context, primitive.ObjectID) error { return nil }

func (f *FakeJackpotService) Recover(context.Context) error { return nil }

func (f *FakeJackpotService) GetCurrent(ctx context.Context) (*models.JackpotView, error) {
	return f.GetCurrentFn(ctx)
}

func (f *FakeJackpotService) History(ctx context.Context) ([]*models.JackpotView, error) {
	return f.HistoryFn(ctx)
}

func (f *FakeJackpotService) LastCompleted(ctx context.Context) ([]*models.JackpotView, error) {
	return f.LastCompletedFn(ctx)
}

func (f *FakeJackpotService) Timer() models.TimerStatus { return f.TimerFn() }

type FakeUserService struct {
	GetUserFn      func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SaveTradeURLFn func(ctx context.Context, id primitive.ObjectID, tradeURL string) error
	StatisticsFn   func(ctx context.Context, id primitive.ObjectID) (*models.UserStatistics, error)
}

func (f *FakeUserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return f.GetUserFn(ctx, id)
}

func (f *FakeUserService) SaveTradeURL(ctx context.Context, id primitive.ObjectID, tradeURL string) error {
	return f.SaveTradeURLFn(ctx, id, tradeURL)
}

func (f *FakeUserService) Statistics(ctx context.Context, id primitive.ObjectID) (*models.UserStatistics, error) {
	return f.StatisticsFn(ctx, id)
}

type FakeInventoryService struct {
	SyncFn      func(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error)
	AvailableFn func(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error)
}

func (f *FakeInventoryService) Sync(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error) {
	return f.SyncFn(ctx, userID)
}

func (f *FakeInventoryService) Available(ctx context.Context, userID primitive.ObjectID) ([]*models.Item, error) {
	return f.AvailableFn(ctx, userID)
}

type FakeAuthService struct {
	ExchangeCodeFn       func(ctx context.Context, code string) (string, error)
	AdminLoginFn         func(ctx context.Context, req models.LoginRequest) (string, error)
	CompleteSteamLoginFn func(ctx context.Context, params url.Values) (string, error)
}

func (f *FakeAuthService) SteamLoginURL() string { return "https://steam.example/openid" }

func (f *FakeAuthService) CompleteSteamLogin(ctx context.Context, params url.Values) (string, error) {
	return f.CompleteSteamLoginFn(ctx, params)
}

func (f *FakeAuthService) ExchangeCode(ctx context.Context, code string) (string, error) {
	return f.ExchangeCodeFn(ctx, code)
}

func (f *FakeAuthService) AdminLogin(ctx context.Context, req models.LoginRequest) (string, error) {
	return f.AdminLoginFn(ctx, req)
}

type FakePayoutService struct {
	ListFn           func(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error)
	ListForJackpotFn func(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error)
	RetryFn          func(ctx context.Context, id primitive.ObjectID) (services.PayoutResult, error)
}

func (f *FakePayoutService) Dispatch(services.Settlement) {}

func (f *FakePayoutService) Settle(context.Context, services.Settlement) []services.PayoutResult {
	return nil
}

func (f *FakePayoutService) Retry(ctx context.Context, id primitive.ObjectID) (services.PayoutResult, error) {
	return f.RetryFn(ctx, id)
}

func (f *FakePayoutService) List(ctx context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error) {
	return f.ListFn(ctx, status, limit)
}

func (f *FakePayoutService) ListForJackpot(ctx context.Context, jackpotID primitive.ObjectID) ([]*models.Payout, error) {
	return f.ListForJackpotFn(ctx, jackpotID)
}

type FakeSettingsService struct {
	settings models.SystemSettings
	saved    *models.SystemSettings
}

func (f *FakeSettingsService) GetSettings(context.Context) (*models.SystemSettings, error) {
	s := f.settings
	return &s, nil
}

func (f *FakeSettingsService) UpdateSettings(_ context.Context, s *models.SystemSettings) error {
	if s.CommissionPercentage < 0 || s.CommissionPercentage > 100 {
		return services.ErrInvalidSettings
	}
	f.saved = s
	return nil
}
