package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("slot not found")
	ErrInvalidTransition = errors.New("invalid slot status transition")
)

type Repository interface {
	// Bulk generation; existing (court, start) pairs are skipped, never duplicated.
	CreateSlots(ctx context.Context, slots []Slot) (int, error)

	// Read paths, no locking.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Slot, error)
	FindInRange(ctx context.Context, courtID uuid.UUID, date time.Time, startAt, endAt time.Time) ([]Slot, error)
	FindForClubBetween(ctx context.Context, clubID uuid.UUID, from, to time.Time) ([]Slot, error)

	// Sweep feed: every slot whose window has elapsed and whose status can
	// still move time-based.
	FindSweepCandidates(ctx context.Context, now time.Time) ([]Slot, error)

	// UpdateStatusLocked applies a status mutation under a FOR UPDATE row
	// lock. apply receives the current status and returns the next one;
	// returning an error rolls back untouched.
	UpdateStatusLocked(ctx context.Context, slotID uuid.UUID, apply func(current Status) (Status, error)) (from Status, to Status, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// LockStatusesForUpdate loads the status rows for the given slots inside tx
// with FOR UPDATE held, ordered by the slot's start time. Deterministic lock
// order keeps two overlapping allocations from deadlocking each other.
func LockStatusesForUpdate(tx *gorm.DB, slotIDs []uuid.UUID) ([]SlotStatus, error) {
	var statuses []SlotStatus
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "slot_statuses"}}).
		Joins("JOIN slots ON slots.id = slot_statuses.slot_id").
		Where("slot_statuses.slot_id IN ?", slotIDs).
		Order("slots.start_at ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock slot statuses: %w", err)
	}
	return statuses, nil
}

func (r *repository) CreateSlots(ctx context.Context, candidates []Slot) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	created := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courtIDs := make(map[uuid.UUID]struct{})
		var minStart, maxStart time.Time
		for i, s := range candidates {
			courtIDs[s.CourtID] = struct{}{}
			if i == 0 || s.StartAt.Before(minStart) {
				minStart = s.StartAt
			}
			if i == 0 || s.StartAt.After(maxStart) {
				maxStart = s.StartAt
			}
		}
		ids := make([]uuid.UUID, 0, len(courtIDs))
		for id := range courtIDs {
			ids = append(ids, id)
		}

		var existing []Slot
		if err := tx.Select("court_id", "start_at").
			Where("court_id IN ? AND start_at BETWEEN ? AND ?", ids, minStart, maxStart).
			Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load existing slots: %w", err)
		}
		seen := make(map[string]struct{}, len(existing))
		for _, s := range existing {
			seen[slotKey(s.CourtID, s.StartAt)] = struct{}{}
		}

		var fresh []Slot
		for _, s := range candidates {
			if _, dup := seen[slotKey(s.CourtID, s.StartAt)]; dup {
				continue
			}
			seen[slotKey(s.CourtID, s.StartAt)] = struct{}{}
			s.ID = uuid.New()
			fresh = append(fresh, s)
		}
		if len(fresh) == 0 {
			return nil
		}

		if err := tx.CreateInBatches(fresh, 500).Error; err != nil {
			return fmt.Errorf("failed to create slots: %w", err)
		}

		statuses := make([]SlotStatus, 0, len(fresh))
		for _, s := range fresh {
			statuses = append(statuses, SlotStatus{SlotID: s.ID, Status: StatusAvailable})
		}
		if err := tx.CreateInBatches(statuses, 500).Error; err != nil {
			return fmt.Errorf("failed to create slot statuses: %w", err)
		}

		created = len(fresh)
		return nil
	})
	return created, err
}

func slotKey(courtID uuid.UUID, startAt time.Time) string {
	return courtID.String() + "|" + startAt.UTC().Format(time.RFC3339)
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Slot, error) {
	var found []Slot
	err := r.db.WithContext(ctx).
		Preload("SlotStatus").
		Preload("Court").
		Where("id IN ?", ids).
		Order("start_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) FindInRange(ctx context.Context, courtID uuid.UUID, date time.Time, startAt, endAt time.Time) ([]Slot, error) {
	var found []Slot
	err := r.db.WithContext(ctx).
		Preload("SlotStatus").
		Preload("Court").
		Where("court_id = ? AND service_date = ?", courtID, date).
		Where("start_at >= ? AND end_at <= ?", startAt, endAt).
		Order("start_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) FindForClubBetween(ctx context.Context, clubID uuid.UUID, from, to time.Time) ([]Slot, error) {
	var found []Slot
	err := r.db.WithContext(ctx).
		Preload("SlotStatus").
		Preload("Court").
		Joins("JOIN courts ON courts.id = slots.court_id").
		Where("courts.club_id = ?", clubID).
		Where("slots.service_date BETWEEN ? AND ?", from, to).
		Order("slots.service_date ASC, slots.court_id ASC, slots.start_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) FindSweepCandidates(ctx context.Context, now time.Time) ([]Slot, error) {
	sweepable := []Status{StatusAvailable, StatusBooked, StatusWalkin, StatusCheckin, StatusPlaying}
	var found []Slot
	err := r.db.WithContext(ctx).
		Preload("SlotStatus").
		Joins("JOIN slot_statuses ON slot_statuses.slot_id = slots.id").
		Where("slot_statuses.status IN ?", sweepable).
		Where("slots.end_at < ?", now).
		Order("slots.end_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) UpdateStatusLocked(ctx context.Context, slotID uuid.UUID, apply func(current Status) (Status, error)) (Status, Status, error) {
	var from, to Status
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ss SlotStatus
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("slot_id = ?", slotID).
			First(&ss).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock slot status: %w", err)
		}

		from = ss.Status
		next, err := apply(ss.Status)
		if err != nil {
			return err
		}
		to = next

		return tx.Model(&SlotStatus{}).
			Where("slot_id = ?", slotID).
			Updates(map[string]interface{}{
				"status":     next,
				"updated_at": time.Now().UTC(),
			}).Error
	})
	return from, to, err
}
