package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ArowuTest/skinjackpot-backend/internal/middleware"
	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for JWTAuthMiddleware
func asUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNoItems, http.StatusBadRequest},
		{fmt.Errorf("%w: \"x\"", services.ErrInvalidItemID), http.StatusBadRequest},
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrRoundNotActive, http.StatusNotFound},
		{services.ErrIntermission, http.StatusConflict},
		{services.ErrJoinsPaused, http.StatusConflict},
		{services.ErrItemsUnavailable, http.StatusConflict},
		{services.ErrNoTradeURL, http.StatusUnprocessableEntity},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("mongo down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestJackpotHandler_JoinUsesTokenUser(t *testing.T) {
	var got models.JoinRequest
	svc := &FakeJackpotService{JoinFn: func(_ context.Context, req models.JoinRequest) (*models.Jackpot, error) {
		got = req
		return &models.Jackpot{Status: models.RoundStatusWaiting, TotalValue: 12}, nil
	}}
	h := NewJackpotHandler(svc)
	r := gin.New()
	r.POST("/join", asUser("token-user"), h.Join)

	w := serve(r, http.MethodPost, "/join", `{"userId":"someone-else","itemIds":["a","b"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "token-user", got.UserID)
	assert.Equal(t, []string{"a", "b"}, got.ItemIDs)
	assert.Contains(t, w.Body.String(), `"totalValue":12`)
}

func TestJackpotHandler_JoinErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrNoTradeURL, http.StatusUnprocessableEntity},
		{services.ErrIntermission, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := &FakeJackpotService{JoinFn: func(context.Context, models.JoinRequest) (*models.Jackpot, error) {
			return nil, tt.err
		}}
		r := gin.New()
		r.POST("/join", asUser("u"), NewJackpotHandler(svc).Join)

		w := serve(r, http.MethodPost, "/join", `{"itemIds":["a"]}`)

		assert.Equal(t, tt.code, w.Code)
		if tt.code == http.StatusInternalServerError {
			assert.NotContains(t, w.Body.String(), "boom")
		}
	}
}

func TestJackpotHandler_Reads(t *testing.T) {
	id := primitive.NewObjectID()
	svc := &FakeJackpotService{
		GetCurrentFn: func(context.Context) (*models.JackpotView, error) { return nil, services.ErrRoundNotActive },
		HistoryFn: func(context.Context) ([]*models.JackpotView, error) {
			return []*models.JackpotView{{ID: id, Status: models.RoundStatusCompleted}}, nil
		},
		LastCompletedFn: func(context.Context) ([]*models.JackpotView, error) { return []*models.JackpotView{}, nil },
		TimerFn:         func() models.TimerStatus { return models.TimerStatus{RoundID: &id, TimeLeft: 7} },
	}
	h := NewJackpotHandler(svc)
	r := gin.New()
	r.GET("/status", h.Status)
	r.GET("/history", h.History)
	r.GET("/last-four-jackpots", h.LastFour)
	r.GET("/timer", h.Timer)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/status", "").Code)

	w := serve(r, http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.Hex())

	w = serve(r, http.MethodGet, "/last-four-jackpots", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = serve(r, http.MethodGet, "/timer", "")
	assert.Contains(t, w.Body.String(), `"timeLeft":7`)
}

func TestUserHandler(t *testing.T) {
	userID := primitive.NewObjectID()
	var saved string
	svc := &FakeUserService{
		GetUserFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
		SaveTradeURLFn: func(_ context.Context, _ primitive.ObjectID, tradeURL string) error {
			if tradeURL == "bad" {
				return services.ErrInvalidTradeURL
			}
			saved = tradeURL
			return nil
		},
		StatisticsFn: func(context.Context, primitive.ObjectID) (*models.UserStatistics, error) {
			return &models.UserStatistics{TotalWon: 100, GameHistory: []models.GameHistoryEntry{}}, nil
		},
	}
	h := NewUserHandler(svc)
	r := gin.New()
	r.GET("/me", asUser(userID.Hex()), h.GetMe)
	r.GET("/anon", asUser("not-an-id"), h.GetMe)
	r.POST("/trade", asUser(userID.Hex()), h.SaveTradeURL)
	r.GET("/stats", asUser(userID.Hex()), h.Statistics)

	w := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/anon", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/trade", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/trade", `{"tradeUrl":"bad"}`).Code)

	w = serve(r, http.MethodPost, "/trade", `{"tradeUrl":"https://steamcommunity.com/tradeoffer/new/?partner=1&token=AbCdEfGh"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, saved)

	w = serve(r, http.MethodGet, "/stats", "")
	assert.Contains(t, w.Body.String(), `"totalWon":100`)
}

func TestInventoryHandler_FallsBackToStoredItems(t *testing.T) {
	userID := primitive.NewObjectID()
	svc := &FakeInventoryService{
		SyncFn: func(context.Context, primitive.ObjectID) ([]*models.Item, error) {
			return nil, errors.New("steam unavailable")
		},
		AvailableFn: func(context.Context, primitive.ObjectID) ([]*models.Item, error) {
			return []*models.Item{{Name: "Rifle"}}, nil
		},
	}
	r := gin.New()
	r.GET("/inventory", asUser(userID.Hex()), NewInventoryHandler(svc).GetInventory)

	w := serve(r, http.MethodGet, "/inventory", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stale":true`)
	assert.Contains(t, w.Body.String(), "Rifle")
}

func TestAuthHandler(t *testing.T) {
	svc := &FakeAuthService{
		ExchangeCodeFn: func(_ context.Context, code string) (string, error) {
			if code != "good" {
				return "", services.ErrInvalidCode
			}
			return "jwt-token", nil
		},
		AdminLoginFn: func(context.Context, models.LoginRequest) (string, error) {
			return "", services.ErrInvalidCredentials
		},
		CompleteSteamLoginFn: func(_ context.Context, params url.Values) (string, error) {
			if params.Get("openid.mode") != "id_res" {
				return "", services.ErrInvalidCredentials
			}
			return "https://play.example/auth-callback?code=abc", nil
		},
	}
	h := NewAuthHandler(svc, "https://play.example")
	r := gin.New()
	r.GET("/auth/steam", h.SteamLogin)
	r.GET("/auth/steam/return", h.SteamReturn)
	r.POST("/auth/exchange", h.Exchange)
	r.POST("/admin/login", h.AdminLogin)

	w := serve(r, http.MethodGet, "/auth/steam", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://steam.example/openid", w.Header().Get("Location"))

	w = serve(r, http.MethodGet, "/auth/steam/return?openid.mode=id_res", "")
	assert.Equal(t, "https://play.example/auth-callback?code=abc", w.Header().Get("Location"))
	w = serve(r, http.MethodGet, "/auth/steam/return?openid.mode=cancel", "")
	assert.Equal(t, "https://play.example/auth-callback?error=login_failed", w.Header().Get("Location"))

	w = serve(r, http.MethodPost, "/auth/exchange", `{"code":"good"}`)
	assert.JSONEq(t, `{"token":"jwt-token"}`, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/auth/exchange", `{"code":"stale"}`).Code)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/admin/login", `{"email":"not-an-email","password":"x"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/admin/login", `{"email":"ops@example.com","password":"x"}`).Code)
}

func TestPayoutHandler(t *testing.T) {
	payoutID := primitive.NewObjectID()
	var gotStatus models.PayoutStatus
	var gotLimit int64
	svc := &FakePayoutService{
		ListFn: func(_ context.Context, status models.PayoutStatus, limit int64) ([]*models.Payout, error) {
			gotStatus, gotLimit = status, limit
			return []*models.Payout{{ID: payoutID, Status: status}}, nil
		},
		ListForJackpotFn: func(context.Context, primitive.ObjectID) ([]*models.Payout, error) {
			return []*models.Payout{}, nil
		},
		RetryFn: func(_ context.Context, id primitive.ObjectID) (services.PayoutResult, error) {
			if id != payoutID {
				return services.PayoutResult{}, services.ErrPayoutNotFound
			}
			return services.PayoutResult{PayoutID: id, Outcome: services.PayoutOutcomeSuccess, OfferID: "offer-9"}, nil
		},
	}
	h := NewPayoutHandler(svc)
	r := gin.New()
	r.GET("/admin/payouts", h.List)
	r.POST("/admin/payouts/:id/retry", h.Retry)

	w := serve(r, http.MethodGet, "/admin/payouts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PayoutStatusFailed, gotStatus)
	assert.Equal(t, int64(50), gotLimit)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/admin/payouts?status=lost", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/admin/payouts?limit=0", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/admin/payouts?jackpotId="+payoutID.Hex(), "").Code)

	w = serve(r, http.MethodPost, "/admin/payouts/"+payoutID.Hex()+"/retry", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "offer-9")

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/admin/payouts/"+primitive.NewObjectID().Hex()+"/retry", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/admin/payouts/xyz/retry", "").Code)
}

func TestSystemSettingsHandler(t *testing.T) {
	svc := &FakeSettingsService{settings: models.SystemSettings{CommissionPercentage: 10}}
	h := NewSystemSettingsHandler(svc)
	r := gin.New()
	r.GET("/admin/settings", h.GetSettings)
	r.PUT("/admin/settings", asUser("admin-1"), h.UpdateSettings)

	w := serve(r, http.MethodGet, "/admin/settings", "")
	assert.Contains(t, w.Body.String(), `"commissionPercentage":10`)

	w = serve(r, http.MethodPut, "/admin/settings", `{"commissionPercentage":5,"joinsPaused":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.saved)
	assert.Equal(t, "admin-1", svc.saved.UpdatedBy)
	assert.True(t, svc.saved.JoinsPaused)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPut, "/admin/settings", `{"commissionPercentage":150}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPut, "/admin/settings", `{}`).Code)
}

func TestSystemSettingsHandler_PartialUpdateKeepsStoredValues(t *testing.T) {
	svc := &FakeSettingsService{settings: models.SystemSettings{CommissionPercentage: 12}}
	h := NewSystemSettingsHandler(svc)
	r := gin.New()
	r.PUT("/admin/settings", asUser("admin-2"), h.UpdateSettings)

	w := serve(r, http.MethodPut, "/admin/settings", `{"joinsPaused":true}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.saved)
	assert.Equal(t, 12, svc.saved.CommissionPercentage)
	assert.True(t, svc.saved.JoinsPaused)
	assert.Equal(t, "admin-2", svc.saved.UpdatedBy)
}
