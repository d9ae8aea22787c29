package wallet

import (
	"time"

	"github.com/google/uuid"
)

// EntryType classifies a coin ledger entry.
type EntryType string

const (
	// EntryInitial is the one-time signup grant.
	EntryInitial EntryType = "initial"
	// EntryTopup is an approved top-up credit.
	EntryTopup EntryType = "topup"
	// EntryCapture is the charge taken when a booking is confirmed.
	EntryCapture EntryType = "capture"
	// EntryRefund returns a captured charge after cancellation.
	EntryRefund EntryType = "refund"
)

// LedgerEntry is one immutable movement of coins. Amount is signed: credits
// are positive, captures negative. The sum of a user's entries is the
// authoritative balance.
type LedgerEntry struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	EntryType EntryType  `json:"entry_type" gorm:"type:varchar(20);not null"`
	Amount    int        `json:"amount" gorm:"not null"`
	Reference string     `json:"reference,omitempty" gorm:"type:varchar(64)"`
	BookingID *uuid.UUID `json:"booking_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "coin_ledger"
}

// Wallet is the cached running balance, resynced from the ledger on every
// mutation. Reads may serve it directly; the ledger stays the source of truth.
type Wallet struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	Balance   int       `json:"balance" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}

// TopupStatus tracks the review state of a top-up request.
type TopupStatus string

const (
	TopupPending  TopupStatus = "pending"
	TopupApproved TopupStatus = "approved"
	TopupRejected TopupStatus = "rejected"
)

// TopupRequest is a player's ask for coins, reviewed by a manager. Coins move
// only on approval; a rejected request writes no ledger entry. The slip is a
// path reference; the file itself lives outside this system.
type TopupRequest struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	AmountTHB    int         `json:"amount_thb" gorm:"not null"`
	Amount       int         `json:"amount" gorm:"not null"`
	TransferDate string      `json:"transfer_date" gorm:"type:varchar(10)"`
	TransferTime string      `json:"transfer_time" gorm:"type:varchar(5)"`
	SlipPath     string      `json:"slip_path,omitempty" gorm:"type:varchar(255)"`
	Status       TopupStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	ReviewedBy   *uuid.UUID  `json:"reviewed_by,omitempty" gorm:"type:uuid"`
	ReviewedAt   *time.Time  `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (TopupRequest) TableName() string {
	return "topup_requests"
}
