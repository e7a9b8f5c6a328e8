package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ambika-sandledger/internal/adapters/persistence/models"
	"ambika-sandledger/internal/core/domain"

	"gorm.io/gorm"
)

// In-memory repository stubs. They mirror the store's observable
// behavior, including unique-index enforcement surfacing as
// gorm.ErrDuplicatedKey when a pre-check raced. Username matching is
// case-insensitive, as under MySQL's default collation.

type stubUserRepo struct {
	mu    sync.Mutex
	seq   uint
	users map[uint]*models.User
	// txns, when set, backs the ledger-count delete guard.
	txns *stubTransactionRepo
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, user.Username) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	user.ID = r.seq
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return cloneUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByUsernameExcept(_ context.Context, username string, exceptID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id uint, fullName, contactNumber *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FullName = fullName
	u.ContactNumber = contactNumber
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id uint, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = newHash
	return nil
}

func (r *stubUserRepo) Rename(_ context.Context, id uint, newUsername string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Username, newUsername) && u.ID != id {
			return gorm.ErrDuplicatedKey
		}
	}
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Username = newUsername
	return nil
}

func (r *stubUserRepo) DeleteIfNoTransactions(ctx context.Context, id uint) error {
	if r.txns != nil {
		count, err := r.txns.CountByUser(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrUserHasLedger
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) ListNonMaster(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if u.Username != models.MasterUsername {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*models.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.Token] = &clone
	return nil
}

func (r *stubSessionRepo) GetByToken(_ context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for token, s := range r.sessions {
		if s.IsExpired() {
			delete(r.sessions, token)
			purged++
		}
	}
	return purged, nil
}

type stubTransactionRepo struct {
	mu   sync.Mutex
	seq  uint
	txns []*models.Transaction
	// usernames backs the export join.
	usernames map[uint]string
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{usernames: make(map[uint]string)}
}

func (r *stubTransactionRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.TransactionID == txn.TransactionID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.seq++
	txn.ID = r.seq
	clone := *txn
	r.txns = append(r.txns, &clone)
	return nil
}

func (r *stubTransactionRepo) ExistsByTransactionID(_ context.Context, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubTransactionRepo) ListByUser(_ context.Context, userID uint) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Transaction
	for _, t := range r.txns {
		if t.UserID == userID {
			clone := *t
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *stubTransactionRepo) ListAll(_ context.Context) ([]*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Transaction, 0, len(r.txns))
	for _, t := range r.txns {
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (r *stubTransactionRepo) CountByUser(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, t := range r.txns {
		if t.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *stubTransactionRepo) ExportAll(_ context.Context) ([]*models.ExportRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ExportRow, 0, len(r.txns))
	for _, t := range r.txns {
		out = append(out, &models.ExportRow{
			TransactionID: t.TransactionID,
			Timestamp:     t.Timestamp,
			LoggedByUser:  r.usernames[t.UserID],
			TruckNumber:   t.TruckNumber,
			DriverName:    t.DriverName,
			InitialWeight: t.InitialWeight,
			FinalWeight:   t.FinalWeight,
			SandWeight:    t.SandWeight,
			BillAmount:    t.BillAmount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// racingUserRepo hides existing rows from the pre-checks so the unique
// index is the first thing to notice a duplicate, as when a concurrent
// writer wins between check and insert.
type racingUserRepo struct {
	*stubUserRepo
}

func (r *racingUserRepo) ExistsByUsername(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (r *racingUserRepo) ExistsByUsernameExcept(_ context.Context, _ string, _ uint) (bool, error) {
	return false, nil
}

type racingTransactionRepo struct {
	*stubTransactionRepo
}

func (r *racingTransactionRepo) ExistsByTransactionID(_ context.Context, _ string) (bool, error) {
	return false, nil
}

type stubSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newStubSettingRepo() *stubSettingRepo {
	return &stubSettingRepo{values: make(map[string]string)}
}

func (r *stubSettingRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubSettingRepo) Upsert(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}
