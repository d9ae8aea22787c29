package bookings

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/clock"
	"courtly/internal/slots"
	"courtly/internal/users"
	"courtly/internal/wallet"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDirectory resolves contact details for registered users so bookings can
// snapshot them. Implemented by the auth package's adapter.
type UserDirectory interface {
	LookupUser(ctx context.Context, userID uuid.UUID) (name, email string, err error)
}

// Notifier publishes booking lifecycle events. Implementations must not
// block the request path; a nil Notifier disables publishing.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *Booking)
	BookingCancelled(ctx context.Context, b *Booking, refunded int)
}

// Service interface defines the contract for booking business logic
type Service interface {
	CreateBooking(ctx context.Context, actor users.Actor, req *CreateBookingRequest) (*BookingResponse, error)

	// CreateWalkIn books slots for a desk customer. Manager only, never
	// charges coins.
	CreateWalkIn(ctx context.Context, actor users.Actor, req *WalkInRequest) (*BookingResponse, error)

	CheckIn(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error)
	Cancel(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error)

	GetByBookingNo(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error)
	MyBookings(ctx context.Context, actor users.Actor) ([]BookingResponse, error)
	ListForClubDate(ctx context.Context, actor users.Actor, clubID uuid.UUID, date time.Time) ([]BookingResponse, error)
	ListUpcoming(ctx context.Context, actor users.Actor, clubID uuid.UUID) ([]BookingResponse, error)

	// SlotReachedTerminal advances the booking when its chronologically
	// last slot resolves. Satisfies the slots package's propagation hook.
	SlotReachedTerminal(ctx context.Context, slotID uuid.UUID, status slots.Status) error
}

type service struct {
	repo         Repository
	slotRepo     slots.Repository
	catalog      catalog.Repository
	userDir      UserDirectory
	notifier     Notifier
	clk          clock.Clock
	log          *logger.Logger
	cancelWindow time.Duration
}

func NewService(repo Repository, slotRepo slots.Repository, cat catalog.Repository, userDir UserDirectory, notifier Notifier, clk clock.Clock, log *logger.Logger, cancelWindow time.Duration) Service {
	return &service{
		repo:         repo,
		slotRepo:     slotRepo,
		catalog:      cat,
		userDir:      userDir,
		notifier:     notifier,
		clk:          clk,
		log:          log,
		cancelWindow: cancelWindow,
	}
}

func (s *service) CreateBooking(ctx context.Context, actor users.Actor, req *CreateBookingRequest) (*BookingResponse, error) {
	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		return nil, fmt.Errorf("invalid club id: %w", err)
	}
	exists, err := s.catalog.ClubExists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalog.ErrNotFound
	}

	slotIDs, err := s.resolveSlotIDs(ctx, req)
	if err != nil {
		return nil, err
	}

	name, email, err := s.userDir.LookupUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	bookingNo, err := s.newBookingNo(ctx)
	if err != nil {
		return nil, err
	}

	userID := actor.UserID
	booking := &Booking{
		BookingNo:     bookingNo,
		UserID:        &userID,
		CustomerName:  name,
		CustomerEmail: email,
		ClubID:        clubID,
		Status:        StatusUpcoming,
		Method:        MethodOnline,
		PaymentMethod: PaymentCoins,
	}

	err = s.repo.CreateAllocated(ctx, booking, slotIDs, slots.StatusBooked, func(tx *gorm.DB, b *Booking) error {
		if b.TotalCost == 0 {
			return nil
		}
		_, err := wallet.ApplyEntryTx(tx, wallet.LedgerEntry{
			UserID:    actor.UserID,
			EntryType: wallet.EntryCapture,
			Amount:    -b.TotalCost,
			Reference: b.BookingNo,
			BookingID: &b.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.BookingNo, actor.UserID.String(), booking.TotalCost)
	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, booking)
	}

	created, err := s.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(created), nil
}

func (s *service) CreateWalkIn(ctx context.Context, actor users.Actor, req *WalkInRequest) (*BookingResponse, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}

	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		return nil, fmt.Errorf("invalid club id: %w", err)
	}
	exists, err := s.catalog.ClubExists(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalog.ErrNotFound
	}

	slotIDs, err := parseSlotIDs(req.SlotIDs)
	if err != nil {
		return nil, err
	}

	bookingNo, err := s.newBookingNo(ctx)
	if err != nil {
		return nil, err
	}

	// Walk-ins are free and carry no user; only the customer snapshot.
	booking := &Booking{
		BookingNo:     bookingNo,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		ClubID:        clubID,
		Status:        StatusWalkin,
		Method:        MethodWalkin,
		PaymentMethod: PaymentFree,
	}

	err = s.repo.CreateAllocated(ctx, booking, slotIDs, slots.StatusWalkin, func(tx *gorm.DB, b *Booking) error {
		b.TotalCost = 0
		return tx.Model(&Booking{}).Where("id = ?", b.ID).Update("total_cost", 0).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.BookingNo, actor.UserID.String(), 0)

	created, err := s.repo.GetByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(created), nil
}

func (s *service) CheckIn(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}

	b, err := s.repo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateLocked(ctx, b.ID, func(tx *gorm.DB, b *Booking) error {
		if !b.Status.CanTransition(StatusCheckin) {
			return fmt.Errorf("%w: cannot check in from %s", ErrInvalidState, b.Status)
		}

		slotIDs := linkedSlotIDs(b)
		statuses, err := s.repo.LockSlotStatuses(tx, slotIDs)
		if err != nil {
			return err
		}
		for _, ss := range statuses {
			if !ss.Status.CanTransition(slots.StatusPlaying) {
				return fmt.Errorf("%w: slot %s is %s", ErrInvalidState, ss.SlotID, ss.Status)
			}
		}
		if err := s.repo.SetSlotStatuses(tx, slotIDs, slots.StatusPlaying); err != nil {
			return err
		}

		b.Status = StatusCheckin
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("booking checked in",
		slog.String("booking_no", bookingNo),
		slog.String("manager", actor.UserID.String()),
	)
	return s.toResponse(updated), nil
}

func (s *service) Cancel(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error) {
	b, err := s.repo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(actor, b) {
		return nil, users.ErrForbidden
	}

	refunded := 0
	updated, err := s.repo.UpdateLocked(ctx, b.ID, func(tx *gorm.DB, b *Booking) error {
		if b.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if !b.Status.CanTransition(StatusCancelled) {
			return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidState, b.Status)
		}
		if !s.withinCancelWindow(b) {
			return ErrCancellationWindowClosed
		}

		slotIDs := linkedSlotIDs(b)
		if _, err := s.repo.LockSlotStatuses(tx, slotIDs); err != nil {
			return err
		}
		// Cancellation is the one path that re-opens slots; it resets
		// them regardless of their per-slot state.
		if err := s.repo.SetSlotStatuses(tx, slotIDs, slots.StatusAvailable); err != nil {
			return err
		}

		if b.TotalCost > 0 && b.UserID != nil {
			if _, err := s.repo.ApplyLedger(tx, wallet.LedgerEntry{
				UserID:    *b.UserID,
				EntryType: wallet.EntryRefund,
				Amount:    b.TotalCost,
				Reference: b.BookingNo,
				BookingID: &b.ID,
			}); err != nil {
				return err
			}
			refunded = b.TotalCost
		}

		now := s.clk.Now()
		b.Status = StatusCancelled
		b.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCancelled(ctx, bookingNo, actor.UserID.String(), refunded)
	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, updated, refunded)
	}
	return s.toResponse(updated), nil
}

func (s *service) GetByBookingNo(ctx context.Context, actor users.Actor, bookingNo string) (*BookingResponse, error) {
	b, err := s.repo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(actor, b) {
		return nil, users.ErrForbidden
	}
	return s.toResponse(b), nil
}

func (s *service) MyBookings(ctx context.Context, actor users.Actor) ([]BookingResponse, error) {
	found, err := s.repo.ListForUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResponse, 0, len(found))
	for i := range found {
		out = append(out, *s.toResponse(&found[i]))
	}
	return out, nil
}

func (s *service) ListForClubDate(ctx context.Context, actor users.Actor, clubID uuid.UUID, date time.Time) ([]BookingResponse, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}
	found, err := s.repo.ListForClubDate(ctx, clubID, date)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResponse, 0, len(found))
	for i := range found {
		out = append(out, *s.toResponse(&found[i]))
	}
	return out, nil
}

// ListUpcoming is the manager's desk view: every booking from today on that
// has not yet resolved.
func (s *service) ListUpcoming(ctx context.Context, actor users.Actor, clubID uuid.UUID) ([]BookingResponse, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}
	now := s.clk.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	found, err := s.repo.ListUpcomingForClub(ctx, clubID, today)
	if err != nil {
		return nil, err
	}
	out := make([]BookingResponse, 0, len(found))
	for i := range found {
		out = append(out, *s.toResponse(&found[i]))
	}
	return out, nil
}

func (s *service) SlotReachedTerminal(ctx context.Context, slotID uuid.UUID, status slots.Status) error {
	var target Status
	switch status {
	case slots.StatusNoShow:
		target = StatusNoShow
	case slots.StatusEndgame:
		target = StatusEndgame
	default:
		// Expired and cancelled slots never belong to an active booking.
		return nil
	}

	b, err := s.repo.FindActiveBySlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if !b.IsLastSlot(slotID) {
		return nil
	}

	_, err = s.repo.UpdateLocked(ctx, b.ID, func(tx *gorm.DB, b *Booking) error {
		if !b.Status.CanTransition(target) {
			// A concurrent check-in or cancel won the race; the booking
			// already reflects reality.
			s.log.Warn("skipping booking propagation",
				slog.String("booking_no", b.BookingNo),
				slog.String("from", b.Status.String()),
				slog.String("to", target.String()),
			)
			return nil
		}
		b.Status = target
		return nil
	})
	return err
}

// IsLastSlot reports whether the given slot has the latest end time among the
// booking's linked slots.
func (b *Booking) IsLastSlot(slotID uuid.UUID) bool {
	var lastID uuid.UUID
	var lastEnd time.Time
	for _, link := range b.Slots {
		if link.Slot == nil {
			continue
		}
		if lastID == uuid.Nil || link.Slot.EndAt.After(lastEnd) {
			lastID = link.SlotID
			lastEnd = link.Slot.EndAt
		}
	}
	return lastID == slotID
}

func (s *service) canAccess(actor users.Actor, b *Booking) bool {
	if actor.IsManager() {
		return true
	}
	return b.UserID != nil && *b.UserID == actor.UserID
}

func (s *service) withinCancelWindow(b *Booking) bool {
	start := b.FirstSlotStart()
	if start.IsZero() {
		return false
	}
	return !s.clk.Now().After(start.Add(-s.cancelWindow))
}

func (s *service) resolveSlotIDs(ctx context.Context, req *CreateBookingRequest) ([]uuid.UUID, error) {
	if len(req.SlotIDs) > 0 {
		return parseSlotIDs(req.SlotIDs)
	}
	if len(req.Items) == 0 {
		return nil, ErrNoSlots
	}

	var ids []uuid.UUID
	for _, item := range req.Items {
		courtID, err := uuid.Parse(item.CourtID)
		if err != nil {
			return nil, fmt.Errorf("invalid court id: %w", err)
		}
		date, err := time.Parse("2006-01-02", item.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", item.Date, err)
		}
		startAt, err := combineClock(date, item.StartTime)
		if err != nil {
			return nil, err
		}
		endAt, err := combineClock(date, item.EndTime)
		if err != nil {
			return nil, err
		}
		if !startAt.Before(endAt) {
			return nil, fmt.Errorf("start %s must be before end %s", item.StartTime, item.EndTime)
		}

		covering, err := s.slotRepo.FindInRange(ctx, courtID, date, startAt, endAt)
		if err != nil {
			return nil, err
		}
		expected := int(endAt.Sub(startAt) / slots.SlotDuration)
		if len(covering) != expected {
			return nil, fmt.Errorf("requested range %s-%s is not fully covered by slots", item.StartTime, item.EndTime)
		}
		for _, sl := range covering {
			ids = append(ids, sl.ID)
		}
	}
	return ids, nil
}

func combineClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid HH:MM value %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func parseSlotIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, ErrNoSlots
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid slot id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// newBookingNo draws a short random reference like BK-3F2A9C04D1. Collisions
// are checked against storage and retried.
func (s *service) newBookingNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 5)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		no := "BK-" + strings.ToUpper(hex.EncodeToString(buf))

		exists, err := s.repo.BookingNoExists(ctx, no)
		if err != nil {
			return "", err
		}
		if !exists {
			return no, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique booking number")
}
