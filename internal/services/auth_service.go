package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"github.com/ArowuTest/skinjackpot-backend/internal/utils"
	"github.com/ArowuTest/skinjackpot-backend/pkg/codecache"
	"github.com/ArowuTest/skinjackpot-backend/pkg/jwt"
	"github.com/ArowuTest/skinjackpot-backend/pkg/steamapi"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// SteamAuthenticator is the Steam side of the login flow
type SteamAuthenticator interface {
	LoginURL(returnTo, realm string) string
	VerifyAssertion(ctx context.Context, params url.Values) (string, error)
	GetPlayerSummary(ctx context.Context, steamID string) (*steamapi.PlayerSummary, error)
}

// CodeStore keeps one-time login codes
type CodeStore interface {
	Issue(ctx context.Context, value string) (string, error)
	Redeem(ctx context.Context, code string) (string, error)
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

// AuthServiceImpl runs the Steam login hand-off and admin login
type AuthServiceImpl struct {
	steam       SteamAuthenticator
	codes       CodeStore
	tokens      TokenIssuer
	userRepo    repositories.UserRepository
	adminRepo   repositories.AdminUserRepository
	frontendURL string
	backendURL  string
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(
	steam SteamAuthenticator,
	codes CodeStore,
	tokens TokenIssuer,
	userRepo repositories.UserRepository,
	adminRepo repositories.AdminUserRepository,
	frontendURL, backendURL string,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		steam:       steam,
		codes:       codes,
		tokens:      tokens,
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		backendURL:  strings.TrimRight(backendURL, "/"),
	}
}

// SteamLoginURL is where the browser is sent to sign in
func (s *AuthServiceImpl) SteamLoginURL() string {
	return s.steam.LoginURL(s.backendURL+"/auth/steam/return", s.backendURL)
}

// CompleteSteamLogin verifies the Steam callback, stores the profile and
// returns the frontend URL carrying a one-time code
func (s *AuthServiceImpl) CompleteSteamLogin(ctx context.Context, params url.Values) (string, error) {
	steamID, err := s.steam.VerifyAssertion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	summary, err := s.steam.GetPlayerSummary(ctx, steamID)
	if err != nil {
		return "", fmt.Errorf("failed to load steam profile: %w", err)
	}
	user, err := s.userRepo.UpsertSteamProfile(ctx, models.SteamProfile{
		SteamID:    steamID,
		Username:   summary.PersonaName,
		ProfileURL: summary.ProfileURL,
		Avatar: models.Avatar{
			Small:  summary.Avatar,
			Medium: summary.AvatarMedium,
			Large:  summary.AvatarFull,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}
	code, err := s.codes.Issue(ctx, user.ID.Hex())
	if err != nil {
		return "", err
	}
	slog.Info("Steam login completed", "userId", user.ID.Hex(), "steamId", utils.MaskSteamID(steamID))
	return s.frontendURL + "/auth-callback?code=" + url.QueryEscape(code), nil
}

// ExchangeCode trades a one-time code for a session token. A code can be
// exchanged once.
func (s *AuthServiceImpl) ExchangeCode(ctx context.Context, code string) (string, error) {
	userID, err := s.codes.Redeem(ctx, code)
	if err != nil {
		if errors.Is(err, codecache.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", err
	}
	return s.tokens.Issue(userID, jwt.RolePlayer)
}

// AdminLogin checks operator credentials and returns an admin token
func (s *AuthServiceImpl) AdminLogin(ctx context.Context, req models.LoginRequest) (string, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		slog.Warn("Admin login failed", "adminId", admin.ID.Hex())
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(admin.ID.Hex(), jwt.RoleAdmin)
}

// CreateAdmin stores an operator account with a bcrypt password hash
func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, email, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin, err := s.adminRepo.Create(ctx, &models.AdminUser{Email: email, Password: string(hash), Role: jwt.RoleAdmin})
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil, ErrAdminExists
	}
	return admin, err
}
