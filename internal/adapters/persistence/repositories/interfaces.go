package repositories

import (
	"context"

	"ambika-sandledger/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsByUsernameExcept reports whether the username is taken by a
	// row other than the given id.
	ExistsByUsernameExcept(ctx context.Context, username string, exceptID uint) (bool, error)
	UpdateProfile(ctx context.Context, id uint, fullName, contactNumber *string) error
	UpdatePasswordHash(ctx context.Context, id uint, newHash string) error
	Rename(ctx context.Context, id uint, newUsername string) error
	// DeleteIfNoTransactions removes the user inside one transaction
	// spanning the ledger count-check and the delete, so a concurrent
	// ledger insert cannot be orphaned.
	DeleteIfNoTransactions(ctx context.Context, id uint) error
	ListNonMaster(ctx context.Context) ([]*models.User, error)
}

// SessionRepository defines session repository interface
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// TransactionRepository defines ledger repository interface
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Transaction, error)
	ListAll(ctx context.Context) ([]*models.Transaction, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	// ExportAll returns every row joined with the owner's username,
	// oldest first.
	ExportAll(ctx context.Context) ([]*models.ExportRow, error)
}

// SettingRepository defines settings repository interface
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
}
