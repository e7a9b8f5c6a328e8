package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"time"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/adapters/persistence/repositories"
	"ambika-sandledger/internal/core/domain"
	"ambika-sandledger/internal/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionService handles the append-only weighbridge ledger.
// Rows are immutable after creation; reads are scoped by ownership
// unless the caller is master.
type TransactionService struct {
	txnRepo repositories.TransactionRepository
}

// NewTransactionService creates a new transaction service
func NewTransactionService(txnRepo repositories.TransactionRepository) *TransactionService {
	return &TransactionService{txnRepo: txnRepo}
}

// RecordInput represents a weighbridge entry submitted by a driver.
// BillAmount is priced by the driver's dashboard against the rate
// fetched at load time and is deliberately not recomputed from the
// live rate, so a mid-session rate change never reprices an in-flight
// entry. SandWeight is always derived server-side from the two
// recorded weights.
type RecordInput struct {
	TransactionID string
	Timestamp     time.Time
	TruckNumber   string
	DriverName    string
	InitialWeight float64
	FinalWeight   float64
	BillAmount    float64
}

// Record appends a ledger row on behalf of a driver. Master identities
// are rejected; masters read the ledger, they never write it.
func (s *TransactionService) Record(ctx context.Context, caller *models.SessionIdentity, input *RecordInput) (*models.Transaction, error) {
	if caller.IsMaster {
		return nil, domain.ErrMasterCannotRecord
	}
	if strings.TrimSpace(input.TruckNumber) == "" ||
		strings.TrimSpace(input.DriverName) == "" ||
		input.Timestamp.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if input.FinalWeight <= input.InitialWeight {
		return nil, domain.ErrInvalidWeights
	}
	if input.BillAmount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		transactionID = uuid.NewString()
	} else {
		exists, err := s.txnRepo.ExistsByTransactionID(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateTransaction
		}
	}

	txn := &models.Transaction{
		TransactionID: transactionID,
		UserID:        caller.UserID,
		Timestamp:     input.Timestamp,
		TruckNumber:   strings.TrimSpace(input.TruckNumber),
		DriverName:    strings.TrimSpace(input.DriverName),
		InitialWeight: input.InitialWeight,
		FinalWeight:   input.FinalWeight,
		SandWeight:    input.FinalWeight - input.InitialWeight,
		BillAmount:    input.BillAmount,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateTransaction
		}
		return nil, err
	}

	logger.Get().Info().
		Str("transaction_id", transactionID).
		Uint("user_id", caller.UserID).
		Float64("sand_weight", txn.SandWeight).
		Msg("transaction recorded")
	return txn, nil
}

// List returns the caller's rows, or every row when the caller is
// master, newest first.
func (s *TransactionService) List(ctx context.Context, caller *models.SessionIdentity) ([]*models.Transaction, error) {
	if caller.IsMaster {
		return s.txnRepo.ListAll(ctx)
	}
	return s.txnRepo.ListByUser(ctx, caller.UserID)
}

// CSV export headers, in statement column order.
var csvHeaders = []string{
	"Transaction ID",
	"Timestamp",
	"Logged By User",
	"Truck Number",
	"Driver Name",
	"Initial Weight (T)",
	"Final Weight (T)",
	"Sand Weight (T)",
	"Bill Amount (INR)",
}

// ExportCSV produces the master's flat snapshot of the whole ledger,
// oldest first, one record per CRLF-terminated line. Returns
// domain.ErrNotFound when the ledger is empty.
func (s *TransactionService) ExportCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.txnRepo.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(csvHeaders); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			row.TransactionID,
			row.Timestamp.Format("2006-01-02 15:04:05"),
			row.LoggedByUser,
			row.TruckNumber,
			row.DriverName,
			formatWeight(row.InitialWeight),
			formatWeight(row.FinalWeight),
			formatWeight(row.SandWeight),
			formatWeight(row.BillAmount),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
