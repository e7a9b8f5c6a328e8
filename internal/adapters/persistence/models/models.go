package models

import (
	"time"

	"gorm.io/gorm"
)

// MasterUsername is the reserved username of the singular administrative
// account. The reservation check is case-insensitive on every path, and
// so is uniqueness: the unique index sits on a column with MySQL's
// default case-insensitive collation, so "Alice" and "alice" collide.
const MasterUsername = "master"

// User represents the users table
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	FullName      *string   `gorm:"size:100" json:"fullName"`
	ContactNumber *string   `gorm:"size:30" json:"contactNumber"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsMaster reports whether this row is the reserved master account.
// Derived from the username, never stored.
func (u *User) IsMaster() bool {
	return u.Username == MasterUsername
}

// UserResponse DTO
type UserResponse struct {
	ID            uint    `json:"id"`
	Username      string  `json:"username"`
	FullName      *string `json:"fullName"`
	ContactNumber *string `json:"contactNumber"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		ContactNumber: u.ContactNumber,
	}
}

// SessionIdentity is the authenticated identity attached to a request.
// IsMaster is recomputed from the freshly loaded user row on every
// resolve so a rename takes effect without re-login.
type SessionIdentity struct {
	UserID        uint    `json:"id"`
	Username      string  `json:"username"`
	IsMaster      bool    `json:"isMaster"`
	FullName      *string `json:"fullName"`
	ContactNumber *string `json:"contactNumber"`
}

// Session represents the sessions table. The token is opaque and is
// only ever transported in an HTTP-only cookie.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Transaction represents the transactions table. Rows are immutable
// after creation; there is no update or delete path.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"uniqueIndex;size:64;not null" json:"transaction_id"`
	UserID        uint      `gorm:"index;not null" json:"user_id"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`
	TruckNumber   string    `gorm:"size:30;not null" json:"truck_number"`
	DriverName    string    `gorm:"size:100;not null" json:"driver_name"`
	InitialWeight float64   `gorm:"not null" json:"initial_weight"`
	FinalWeight   float64   `gorm:"not null" json:"final_weight"`
	SandWeight    float64   `gorm:"not null" json:"sand_weight"`
	BillAmount    float64   `gorm:"not null" json:"bill_amount"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// ExportRow is a ledger row joined with the owning driver's username,
// used only by the CSV export.
type ExportRow struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
	LoggedByUser  string    `json:"logged_by_user"`
	TruckNumber   string    `json:"truck_number"`
	DriverName    string    `json:"driver_name"`
	InitialWeight float64   `json:"initial_weight"`
	FinalWeight   float64   `json:"final_weight"`
	SandWeight    float64   `json:"sand_weight"`
	BillAmount    float64   `json:"bill_amount"`
}

// Setting represents the settings key-value table
type Setting struct {
	Key       string    `gorm:"primaryKey;size:50" json:"key"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Setting) TableName() string {
	return "settings"
}

// SettingSandRate is the key of the single rate row consumed when a
// driver's dashboard prices a transaction.
const SettingSandRate = "sandRate"

// AutoMigrate creates/updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Session{},
		&Transaction{},
		&Setting{},
	)
}
