package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtly/internal/slots"
	"courtly/internal/wallet"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChargeFunc runs inside the allocation transaction after the slots are
// secured. Returning an error rolls the whole allocation back.
type ChargeFunc func(tx *gorm.DB, booking *Booking) error

type Repository interface {
	// CreateAllocated books the given slots atomically: it locks their
	// status rows in start-time order, verifies every one is available,
	// fills the booking's slot-derived fields, flips the slots to
	// slotTarget and runs charge, all in one transaction.
	CreateAllocated(ctx context.Context, booking *Booking, slotIDs []uuid.UUID, slotTarget slots.Status, charge ChargeFunc) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	ListForClubDate(ctx context.Context, clubID uuid.UUID, date time.Time) ([]Booking, error)

	// ListUpcomingForClub returns the club's unresolved bookings dated from
	// the given day onward.
	ListUpcomingForClub(ctx context.Context, clubID uuid.UUID, from time.Time) ([]Booking, error)

	// FindActiveBySlot returns the non-terminal booking holding the slot,
	// or ErrNotFound when no active booking holds it.
	FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*Booking, error)

	// UpdateLocked reloads the booking under a FOR UPDATE lock, runs apply
	// and persists the mutated row. apply may do further transactional
	// work (slot status resets, ledger entries) through tx.
	UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, b *Booking) error) (*Booking, error)

	// LockSlotStatuses locks the slots' status rows inside tx in start-time
	// order. Meant for UpdateLocked apply callbacks.
	LockSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID) ([]slots.SlotStatus, error)

	// SetSlotStatuses flips the slots to target inside tx. Callers must hold
	// the row locks from LockSlotStatuses.
	SetSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID, target slots.Status) error

	// ApplyLedger appends one wallet entry inside tx and returns the new
	// balance.
	ApplyLedger(tx *gorm.DB, entry wallet.LedgerEntry) (int, error)

	BookingNoExists(ctx context.Context, bookingNo string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateAllocated(ctx context.Context, booking *Booking, slotIDs []uuid.UUID, slotTarget slots.Status, charge ChargeFunc) error {
	if len(slotIDs) == 0 {
		return ErrNoSlots
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		statuses, err := slots.LockStatusesForUpdate(tx, slotIDs)
		if err != nil {
			return err
		}

		// Anything missing or not open counts as unavailable; the caller
		// gets the full list, not just the first offender.
		held := make(map[uuid.UUID]slots.Status, len(statuses))
		for _, ss := range statuses {
			held[ss.SlotID] = ss.Status
		}
		var unavailable []uuid.UUID
		for _, id := range slotIDs {
			status, ok := held[id]
			if !ok || status != slots.StatusAvailable {
				unavailable = append(unavailable, id)
			}
		}
		if len(unavailable) > 0 {
			return &SlotUnavailableError{SlotIDs: unavailable}
		}

		var slotRows []slots.Slot
		if err := tx.Preload("Court").
			Where("id IN ?", slotIDs).
			Order("start_at ASC").
			Find(&slotRows).Error; err != nil {
			return fmt.Errorf("failed to load slots: %w", err)
		}

		total := 0
		for _, sl := range slotRows {
			total += sl.PriceCoins
		}
		booking.TotalCost = total
		booking.BookingDate = slotRows[0].ServiceDate
		if booking.ClubID == uuid.Nil && slotRows[0].Court != nil {
			booking.ClubID = slotRows[0].Court.ClubID
		}
		if booking.ID == uuid.Nil {
			booking.ID = uuid.New()
		}

		if err := tx.Omit("Slots").Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		links := make([]BookingSlot, 0, len(slotRows))
		for _, sl := range slotRows {
			links = append(links, BookingSlot{
				ID:         uuid.New(),
				BookingID:  booking.ID,
				SlotID:     sl.ID,
				PriceCoins: sl.PriceCoins,
			})
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("failed to link booking slots: %w", err)
		}

		if err := r.SetSlotStatuses(tx, slotIDs, slotTarget); err != nil {
			return err
		}

		if charge != nil {
			if err := charge(tx, booking); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) preloadSlots(db *gorm.DB) *gorm.DB {
	return db.Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Joins("JOIN slots ON slots.id = booking_slots.slot_id").
			Order("slots.start_at ASC")
	}).Preload("Slots.Slot").Preload("Slots.Slot.Court").Preload("Slots.Slot.SlotStatus")
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.preloadSlots(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error) {
	var b Booking
	err := r.preloadSlots(r.db.WithContext(ctx)).First(&b, "booking_no = ?", bookingNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var found []Booking
	err := r.preloadSlots(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("booking_date DESC, created_at DESC").
		Find(&found).Error
	return found, err
}

func (r *repository) ListForClubDate(ctx context.Context, clubID uuid.UUID, date time.Time) ([]Booking, error) {
	var found []Booking
	err := r.preloadSlots(r.db.WithContext(ctx)).
		Where("club_id = ? AND booking_date = ?", clubID, date).
		Order("created_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) ListUpcomingForClub(ctx context.Context, clubID uuid.UUID, from time.Time) ([]Booking, error) {
	active := []Status{StatusUpcoming, StatusWalkin, StatusCheckin}
	var found []Booking
	err := r.preloadSlots(r.db.WithContext(ctx)).
		Where("club_id = ? AND booking_date >= ? AND status IN ?", clubID, from, active).
		Order("booking_date ASC, created_at ASC").
		Find(&found).Error
	return found, err
}

func (r *repository) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*Booking, error) {
	active := []Status{StatusUpcoming, StatusWalkin, StatusCheckin}
	var link BookingSlot
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = booking_slots.booking_id").
		Where("booking_slots.slot_id = ?", slotID).
		Where("bookings.status IN ?", active).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, link.BookingID)
}

func (r *repository) UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, b *Booking) error) (*Booking, error) {
	var updated *Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Booking
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock booking: %w", err)
		}

		// Slots load after the lock so apply sees a consistent view.
		if err := r.preloadSlots(tx).First(&b, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to load booking slots: %w", err)
		}

		if err := apply(tx, &b); err != nil {
			return err
		}

		if err := tx.Omit("Slots").Save(&b).Error; err != nil {
			return fmt.Errorf("failed to persist booking: %w", err)
		}
		updated = &b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) LockSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID) ([]slots.SlotStatus, error) {
	return slots.LockStatusesForUpdate(tx, slotIDs)
}

func (r *repository) SetSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID, target slots.Status) error {
	err := tx.Model(&slots.SlotStatus{}).
		Where("slot_id IN ?", slotIDs).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update slot statuses: %w", err)
	}
	return nil
}

func (r *repository) ApplyLedger(tx *gorm.DB, entry wallet.LedgerEntry) (int, error) {
	return wallet.ApplyEntryTx(tx, entry)
}

func (r *repository) BookingNoExists(ctx context.Context, bookingNo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Booking{}).Where("booking_no = ?", bookingNo).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
