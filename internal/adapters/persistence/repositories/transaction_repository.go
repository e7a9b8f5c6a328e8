package repositories

import (
	"context"

	"ambika-sandledger/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends a ledger row. Duplicate transaction ids are rejected
// by the unique index even when the pre-check raced.
func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// ExistsByTransactionID checks whether a transaction id was already used
func (r *transactionRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser returns one driver's rows, newest first
func (r *transactionRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ListAll returns every row, newest first (master view)
func (r *transactionRepository) ListAll(ctx context.Context) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// CountByUser counts rows owned by a user
func (r *transactionRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ExportAll joins the owner username into each row, oldest first so the
// export reads like a historical statement.
func (r *transactionRepository) ExportAll(ctx context.Context) ([]*models.ExportRow, error) {
	var rows []*models.ExportRow
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Select(`transactions.transaction_id, transactions.timestamp,
			users.username AS logged_by_user,
			transactions.truck_number, transactions.driver_name,
			transactions.initial_weight, transactions.final_weight,
			transactions.sand_weight, transactions.bill_amount`).
		Joins("JOIN users ON transactions.user_id = users.id").
		Order("transactions.timestamp ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
