package services

import (
	"context"
	"errors"
	"strings"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/pkg/logger"
	"ambika-sandledger/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles self-service account mutation and master-only
// account administration.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ============================================================
// Self-service operations (acting identity = the caller)
// ============================================================

// UpdateProfile unconditionally overwrites the caller's profile fields
func (s *UserService) UpdateProfile(ctx context.Context, callerID uint, fullName, contactNumber *string) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, callerID, fullName, contactNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	logger.Get().Info().Uint("id", callerID).Msg("profile updated")
	return user, nil
}

// ChangeOwnPassword replaces the caller's password after verifying the
// current one.
func (s *UserService) ChangeOwnPassword(ctx context.Context, callerID uint, currentPassword, newPassword, confirmPassword string) error {
	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return domain.ErrInvalidArgument
	}
	if newPassword != confirmPassword {
		return domain.ErrInvalidArgument
	}
	if !password.ValidatePassword(newPassword) {
		return domain.ErrInvalidArgument
	}

	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, callerID, hash); err != nil {
		return err
	}
	logger.Get().Info().Uint("id", callerID).Msg("password changed")
	return nil
}

// ChangeOwnUsername renames the caller after verifying the current
// password. The uniqueness check runs before password verification,
// preserving the observable check ordering of the reference system.
func (s *UserService) ChangeOwnUsername(ctx context.Context, callerID uint, newUsername, currentPassword string) (*models.User, error) {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" || currentPassword == "" {
		return nil, domain.ErrInvalidArgument
	}
	if strings.EqualFold(newUsername, models.MasterUsername) {
		return nil, domain.ErrReservedUsername
	}

	taken, err := s.userRepo.ExistsByUsernameExcept(ctx, newUsername, callerID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if user.Username == newUsername {
		return nil, domain.ErrInvalidArgument
	}
	// The master account never renames itself.
	if user.IsMaster() {
		return nil, domain.ErrMasterImmutable
	}
	if !password.Verify(currentPassword, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.userRepo.Rename(ctx, callerID, newUsername); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	user.Username = newUsername
	logger.Get().Info().Uint("id", callerID).Str("username", newUsername).Msg("username changed")
	return user, nil
}

// ============================================================
// Master-only administrative operations
// ============================================================

// ListDrivers lists every non-master account ordered by username
func (s *UserService) ListDrivers(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListNonMaster(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, nil
}

// AddDriver creates a driver account on the master's behalf. Same
// reserved-name and uniqueness rules as self-registration.
func (s *UserService) AddDriver(ctx context.Context, input *RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, domain.ErrInvalidArgument
	}
	if strings.EqualFold(username, models.MasterUsername) {
		return nil, domain.ErrReservedUsername
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:      username,
		PasswordHash:  hash,
		FullName:      input.FullName,
		ContactNumber: input.ContactNumber,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Get().Info().Str("username", username).Uint("id", user.ID).Msg("driver added by master")
	return user, nil
}

// DeleteDriver removes a driver account. The master row can never be
// deleted, and a driver owning ledger rows is protected by a
// count-check that runs in the same DB transaction as the delete.
func (s *UserService) DeleteDriver(ctx context.Context, targetID uint) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsMaster() {
		return domain.ErrMasterImmutable
	}

	if err := s.userRepo.DeleteIfNoTransactions(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	logger.Get().Info().Uint("id", targetID).Msg("driver deleted by master")
	return nil
}

// ResetPassword sets a driver's password without a current-password
// check (master override). Minimum length still applies.
func (s *UserService) ResetPassword(ctx context.Context, targetID uint, newPassword string) error {
	if newPassword == "" || !password.ValidatePassword(newPassword) {
		return domain.ErrInvalidArgument
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsMaster() {
		return domain.ErrMasterImmutable
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, targetID, hash); err != nil {
		return err
	}
	logger.Get().Info().Uint("id", targetID).Msg("password reset by master")
	return nil
}

// RenameDriver changes a driver's username without the target's
// password (master override). Reserved-name and uniqueness rules still
// apply, and the master row itself can never be renamed.
func (s *UserService) RenameDriver(ctx context.Context, targetID uint, newUsername string) error {
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return domain.ErrInvalidArgument
	}
	if strings.EqualFold(newUsername, models.MasterUsername) {
		return domain.ErrReservedUsername
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	if user.IsMaster() {
		return domain.ErrMasterImmutable
	}

	taken, err := s.userRepo.ExistsByUsernameExcept(ctx, newUsername, targetID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUsernameTaken
	}

	if err := s.userRepo.Rename(ctx, targetID, newUsername); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUsernameTaken
		}
		return err
	}
	logger.Get().Info().Uint("id", targetID).Str("username", newUsername).Msg("driver renamed by master")
	return nil
}
