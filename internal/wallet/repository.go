package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Balance reads the cached wallet row; a missing row means zero.
	Balance(ctx context.Context, userID uuid.UUID) (int, error)

	Ledger(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error)
	LedgerAll(ctx context.Context, limit int) ([]LedgerEntry, error)

	// Apply writes one ledger entry and resyncs the wallet in its own
	// transaction. Callers that need the entry inside a larger transaction
	// (booking capture, refund) use ApplyEntryTx directly.
	Apply(ctx context.Context, entry LedgerEntry) (int, error)

	CreateTopup(ctx context.Context, req *TopupRequest) error
	GetTopup(ctx context.Context, id uuid.UUID) (*TopupRequest, error)
	ListTopups(ctx context.Context, status TopupStatus) ([]TopupRequest, error)
	ListTopupsForUser(ctx context.Context, userID uuid.UUID) ([]TopupRequest, error)

	// ReviewTopup closes a pending request under a row lock. credit is
	// invoked while the lock is held only when the review approves.
	ReviewTopup(ctx context.Context, id uuid.UUID, reviewer uuid.UUID, approve bool, credit func(tx *gorm.DB, req *TopupRequest) error) (*TopupRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// BalanceTx sums the user's ledger inside tx. This is the authoritative
// balance; the wallets row is only a cache of it.
func BalanceTx(tx *gorm.DB, userID uuid.UUID) (int, error) {
	var total int64
	err := tx.Model(&LedgerEntry{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}
	return int(total), nil
}

// ApplyEntryTx appends one ledger entry inside tx and resyncs the cached
// wallet row from the new ledger sum. A negative entry that would take the
// sum below zero fails with ErrInsufficientBalance and writes nothing.
func ApplyEntryTx(tx *gorm.DB, entry LedgerEntry) (int, error) {
	if entry.Amount == 0 {
		return 0, ErrInvalidAmount
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	current, err := BalanceTx(tx, entry.UserID)
	if err != nil {
		return 0, err
	}
	next := current + entry.Amount
	if next < 0 {
		return 0, ErrInsufficientBalance
	}

	if err := tx.Create(&entry).Error; err != nil {
		return 0, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if err := resyncWalletTx(tx, entry.UserID, next); err != nil {
		return 0, err
	}
	return next, nil
}

func resyncWalletTx(tx *gorm.DB, userID uuid.UUID, balance int) error {
	w := Wallet{UserID: userID, Balance: balance, UpdatedAt: time.Now().UTC()}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&w).Error
	if err != nil {
		return fmt.Errorf("failed to resync wallet: %w", err)
	}
	return nil
}

func (r *repository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	var w Wallet
	err := r.db.WithContext(ctx).First(&w, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return w.Balance, nil
}

func (r *repository) Ledger(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *repository) LedgerAll(ctx context.Context, limit int) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *repository) Apply(ctx context.Context, entry LedgerEntry) (int, error) {
	var balance int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := ApplyEntryTx(tx, entry)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	return balance, err
}

func (r *repository) CreateTopup(ctx context.Context, req *TopupRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Status = TopupPending
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetTopup(ctx context.Context, id uuid.UUID) (*TopupRequest, error) {
	var req TopupRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListTopups(ctx context.Context, status TopupStatus) ([]TopupRequest, error) {
	var reqs []TopupRequest
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&reqs).Error
	return reqs, err
}

func (r *repository) ListTopupsForUser(ctx context.Context, userID uuid.UUID) ([]TopupRequest, error) {
	var reqs []TopupRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) ReviewTopup(ctx context.Context, id uuid.UUID, reviewer uuid.UUID, approve bool, credit func(tx *gorm.DB, req *TopupRequest) error) (*TopupRequest, error) {
	var reviewed *TopupRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req TopupRequest
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTopupNotFound
			}
			return fmt.Errorf("failed to lock topup request: %w", err)
		}
		if req.Status != TopupPending {
			return ErrTopupAlreadyClosed
		}

		now := time.Now().UTC()
		req.Status = TopupRejected
		if approve {
			req.Status = TopupApproved
		}
		req.ReviewedBy = &reviewer
		req.ReviewedAt = &now
		if err := tx.Model(&TopupRequest{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":      req.Status,
				"reviewed_by": reviewer,
				"reviewed_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update topup request: %w", err)
		}

		if approve && credit != nil {
			if err := credit(tx, &req); err != nil {
				return err
			}
		}
		reviewed = &req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}
