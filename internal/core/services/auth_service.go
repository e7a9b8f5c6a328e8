package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/pkg/logger"
	"ambika-sandledger/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles registration, login and the session lifecycle.
// Session state machine per token: Anonymous → Authenticated →
// (Expired | LoggedOut). Expiry is absolute and checked on every
// resolve; no mutation is required for a session to lapse.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	sessionTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sessionTTL:  sessionTTL,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username      string
	Password      string
	FullName      *string
	ContactNumber *string
}

// Register creates a new driver account. The reserved master name is
// rejected case-insensitively; only the bootstrap seeder may create it.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
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
		// The pre-check can lose to a concurrent writer; the unique
		// index is authoritative.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}

	logger.Get().Info().Str("username", username).Uint("id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies credentials and issues an opaque session token.
// Lookup failure and password mismatch return the same error so the
// response never reveals whether the username exists.
func (s *AuthService) Login(ctx context.Context, username, pass string) (string, *models.SessionIdentity, error) {
	if username == "" || pass == "" {
		return "", nil, domain.ErrInvalidArgument
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !password.Verify(pass, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, err
	}

	logger.Get().Info().Str("username", user.Username).Msg("user logged in")
	return session.Token, identityFor(user), nil
}

// Logout destroys the session, voiding the token. Terminal state.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrInvalidArgument
	}
	return s.sessionRepo.Delete(ctx, token)
}

// Resolve maps a token to the current identity, or nil when anonymous.
// The user row is re-fetched on every call so profile and username
// edits are visible without re-login, and isMaster is recomputed from
// the fresh username to tolerate renames. A session whose token is
// expired or whose user row has vanished is destroyed.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.SessionIdentity, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if session.IsExpired() {
		_ = s.sessionRepo.Delete(ctx, token)
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.sessionRepo.Delete(ctx, token)
			return nil, nil
		}
		return nil, err
	}

	return identityFor(user), nil
}

func identityFor(user *models.User) *models.SessionIdentity {
	return &models.SessionIdentity{
		UserID:        user.ID,
		Username:      user.Username,
		IsMaster:      user.IsMaster(),
		FullName:      user.FullName,
		ContactNumber: user.ContactNumber,
	}
}
