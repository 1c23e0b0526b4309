package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repos can join a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Role is a profile's permission level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is a profile's approval state.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

// TxType is the kind of a ledger row. Activity rows use a wider set.
type TxType string

const (
	TxPurchase     TxType = "purchase"
	TxPayment      TxType = "payment"
	TxAdjustment   TxType = "adjustment"
	TxUserApproved TxType = "user_approved"
	TxInventory    TxType = "inventory"
)

// TxStatus is the approval state of a ledger row.
type TxStatus string

const (
	TxStatusPending  TxStatus = "pending"
	TxStatusApproved TxStatus = "approved"
)

// Profile represents a profile row.
type Profile struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	Status    Status
	CreatedAt time.Time
}

// IsActive reports whether the account has been approved.
func (p Profile) IsActive() bool { return p.Status == StatusActive }

// IsAdmin reports whether the profile may use the admin surface.
func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin && p.Status == StatusActive }

// Transaction represents a ledger row. Purchase and payment amounts are positive
// magnitudes; adjustment amounts are signed deltas. All amounts are minor units.
type Transaction struct {
	ID          string
	ProfileID   string
	ProfileName string
	Type        TxType
	AmountCents int64
	Status      TxStatus
	Notes       string
	CreatedAt   time.Time
}

// Activity represents an admin feed row.
type Activity struct {
	ID          string
	Type        TxType
	AmountCents *int64
	ProfileName string
	Notes       string
	CreatedAt   time.Time
}

// scanner handles both Row and Rows.
type scanner interface {
	Scan(dest ...any) error
}
