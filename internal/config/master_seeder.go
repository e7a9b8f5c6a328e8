package config

import (
	"errors"
	"fmt"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/pkg/logger"
	"ambika-sandledger/internal/pkg/password"

	"gorm.io/gorm"
)

// defaultSandRate is the initial rate written once at bootstrap.
// The settings repository itself never defaults a missing row.
const defaultSandRate = "2000"

// devMasterPassword is the development-only bootstrap fallback. In
// production MASTER_PASSWORD is mandatory and startup fails without it.
const devMasterPassword = "master1234"

// ErrMasterPasswordRequired is returned when production boots without
// MASTER_PASSWORD and the master account does not exist yet.
var ErrMasterPasswordRequired = errors.New("MASTER_PASSWORD must be set in production")

// SeedBootstrapData ensures the reserved master account and the
// initial sand rate row exist. Both seeds are idempotent.
func SeedBootstrapData(db *gorm.DB, cfg *Config) error {
	if err := seedMasterAccount(db, cfg); err != nil {
		return err
	}
	if err := seedSandRate(db); err != nil {
		return err
	}
	logger.Get().Info().Msg("bootstrap data seeded")
	return nil
}

// seedMasterAccount creates the singular master row when absent. This
// is the only code path allowed to create a user named "master".
func seedMasterAccount(db *gorm.DB, cfg *Config) error {
	var existing models.User
	err := db.Where("username = ?", models.MasterUsername).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	masterPassword, err := masterBootstrapPassword(cfg)
	if err != nil {
		return err
	}

	hash, err := password.Hash(masterPassword)
	if err != nil {
		return fmt.Errorf("failed to hash master password: %w", err)
	}

	master := &models.User{
		Username:     models.MasterUsername,
		PasswordHash: hash,
	}
	if err := db.Create(master).Error; err != nil {
		return fmt.Errorf("failed to create master account: %w", err)
	}

	logger.Get().Info().Uint("id", master.ID).Msg("master account created")
	return nil
}

// seedSandRate writes the default rate once, never overwriting an
// operator-set value.
func seedSandRate(db *gorm.DB) error {
	var existing models.Setting
	err := db.Where("`key` = ?", models.SettingSandRate).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	setting := &models.Setting{
		Key:   models.SettingSandRate,
		Value: defaultSandRate,
	}
	if err := db.Create(setting).Error; err != nil {
		return fmt.Errorf("failed to seed sand rate: %w", err)
	}

	logger.Get().Info().Str("rate", defaultSandRate).Msg("default sand rate seeded")
	return nil
}

// masterBootstrapPassword picks the password for the initial master
// row. Never logged; production refuses to boot without an explicit
// MASTER_PASSWORD.
func masterBootstrapPassword(cfg *Config) (string, error) {
	if cfg.MasterPassword != "" {
		return cfg.MasterPassword, nil
	}
	if cfg.IsProd() {
		return "", ErrMasterPasswordRequired
	}
	logger.Get().Warn().
		Msg("MASTER_PASSWORD not set; using the development default, set it before going live")
	return devMasterPassword, nil
}
