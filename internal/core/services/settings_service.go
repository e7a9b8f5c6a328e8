package services

import (
	"context"
	"errors"
	"strconv"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/pkg/logger"

	"gorm.io/gorm"
)

// SettingsService handles the single mutable sand rate consumed when a
// driver's dashboard prices a transaction.
type SettingsService struct {
	settingRepo repositories.SettingRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingRepo repositories.SettingRepository) *SettingsService {
	return &SettingsService{settingRepo: settingRepo}
}

// GetSandRate returns the current rate. A missing row is a
// data-integrity failure, never auto-healed to a default.
func (s *SettingsService) GetSandRate(ctx context.Context) (float64, error) {
	value, err := s.settingRepo.Get(ctx, models.SettingSandRate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Error().Msg("sand rate setting missing from database")
			return 0, domain.ErrRateNotSet
		}
		return 0, err
	}
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Get().Error().Str("value", value).Msg("sand rate setting is not a number")
		return 0, domain.ErrRateNotSet
	}
	return rate, nil
}

// SetSandRate upserts the rate. Must be strictly positive. Existing
// ledger rows are never repriced.
func (s *SettingsService) SetSandRate(ctx context.Context, newRate float64) error {
	if newRate <= 0 {
		return domain.ErrInvalidRate
	}
	value := strconv.FormatFloat(newRate, 'f', -1, 64)
	if err := s.settingRepo.Upsert(ctx, models.SettingSandRate, value); err != nil {
		return err
	}
	logger.Get().Info().Float64("rate", newRate).Msg("sand rate updated")
	return nil
}
