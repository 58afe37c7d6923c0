package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/skinjackpot-backend/internal/models"
	"github.com/ArowuTest/skinjackpot-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/exp/slog"
)

var _ SystemSettingsService = (*SystemSettingsServiceImpl)(nil)

// SystemSettingsServiceImpl implements SystemSettingsService
type SystemSettingsServiceImpl struct {
	settingsRepo repositories.SystemSettingsRepository
	defaults     models.SystemSettings
}

// NewSystemSettingsService creates a new SystemSettingsService. defaultCommission
// is used until an operator saves settings.
func NewSystemSettingsService(settingsRepo repositories.SystemSettingsRepository, defaultCommission int) *SystemSettingsServiceImpl {
	return &SystemSettingsServiceImpl{
		settingsRepo: settingsRepo,
		defaults:     models.SystemSettings{CommissionPercentage: defaultCommission},
	}
}

// GetSettings retrieves the current game settings, falling back to the
// configured defaults when none are stored or the store is unreachable
func (s *SystemSettingsServiceImpl) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	defaults := s.defaults
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &defaults, nil
	}
	slog.Warn("Failed to load system settings, using defaults", "error", err)
	return &defaults, nil
}

// UpdateSettings validates and saves the game settings
func (s *SystemSettingsServiceImpl) UpdateSettings(ctx context.Context, settings *models.SystemSettings) error {
	if settings == nil || settings.CommissionPercentage < 0 || settings.CommissionPercentage > 100 {
		return ErrInvalidSettings
	}
	if err := s.settingsRepo.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	slog.Info("System settings updated", "commissionPercentage", settings.CommissionPercentage, "joinsPaused", settings.JoinsPaused, "updatedBy", settings.UpdatedBy)
	return nil
}
