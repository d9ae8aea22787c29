package slots

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/clock"
	"courtly/internal/shared/constants"
	"courtly/internal/users"
	"courtly/pkg/cache"
	"courtly/pkg/logger"

	"github.com/google/uuid"
)

// Propagator is implemented by the bookings package: when a slot linked to a
// booking reaches a terminal state, the owning booking may have to follow
// (last-slot rule). Declared here to avoid a package cycle.
type Propagator interface {
	SlotReachedTerminal(ctx context.Context, slotID uuid.UUID, status Status) error
}

// TransitionItem is one entry of a bulk status update request.
type TransitionItem struct {
	SlotID uuid.UUID
	To     Status
}

// TransitionResult reports a single applied transition.
type TransitionResult struct {
	SlotID uuid.UUID `json:"slot_id"`
	From   Status    `json:"from"`
	To     Status    `json:"to"`
}

// TransitionError reports a single rejected item of a bulk update.
type TransitionError struct {
	SlotID uuid.UUID `json:"slot_id"`
	Detail string    `json:"detail"`
}

// Service interface defines the contract for slot business logic
type Service interface {
	GenerateSlots(ctx context.Context, clubID uuid.UUID, from, to time.Time) (int, error)

	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Slot, error)

	// Transition applies one manual status change. Manual transitions
	// require the manager capability; the sweep goes through
	// SystemTransition instead.
	Transition(ctx context.Context, actor users.Actor, slotID uuid.UUID, to Status) (*TransitionResult, error)

	// BulkTransition validates and applies each item independently;
	// partial success is reported item by item.
	BulkTransition(ctx context.Context, actor users.Actor, items []TransitionItem) ([]TransitionResult, []TransitionError)

	// SystemTransition is the time-driven path: same transition table, no
	// actor check.
	SystemTransition(ctx context.Context, slotID uuid.UUID, to Status) (*TransitionResult, error)

	MonthAvailability(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthAvailabilityResponse, error)
	MonthView(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthViewResponse, error)
}

type service struct {
	repo       Repository
	catalog    catalog.Repository
	propagator Propagator
	cache      cache.Service
	clk        clock.Clock
	log        *logger.Logger

	defaultPrice int
	viewTTL      time.Duration
}

// NewService creates a new slot service instance. propagator may be set
// later via SetPropagator to break the construction cycle with bookings.
func NewService(repo Repository, cat catalog.Repository, cacheSvc cache.Service, clk clock.Clock, log *logger.Logger, defaultPrice int, viewTTL time.Duration) *service {
	return &service{
		repo:         repo,
		catalog:      cat,
		cache:        cacheSvc,
		clk:          clk,
		log:          log,
		defaultPrice: defaultPrice,
		viewTTL:      viewTTL,
	}
}

// SetPropagator wires the booking propagation hook after both services exist.
func (s *service) SetPropagator(p Propagator) {
	s.propagator = p
}

func (s *service) GenerateSlots(ctx context.Context, clubID uuid.UUID, from, to time.Time) (int, error) {
	exists, err := s.catalog.ClubExists(ctx, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to check club: %w", err)
	}
	if !exists {
		return 0, catalog.ErrNotFound
	}
	if to.Before(from) {
		return 0, fmt.Errorf("invalid date range: end %s before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	hours, err := s.catalog.HoursForClub(ctx, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to load business hours: %w", err)
	}
	if len(hours) == 0 {
		return 0, fmt.Errorf("club %s has no business hours configured", clubID)
	}

	courts, err := s.catalog.CourtsByClub(ctx, clubID)
	if err != nil {
		return 0, fmt.Errorf("failed to load courts: %w", err)
	}
	if len(courts) == 0 {
		return 0, fmt.Errorf("club %s has no courts", clubID)
	}

	windows, err := buildWindows(hours, from, to, time.UTC)
	if err != nil {
		return 0, err
	}

	var candidates []Slot
	for day, w := range windows {
		for _, court := range courts {
			candidates = append(candidates, expandWindow(court.ID, day, w, s.defaultPrice)...)
		}
	}

	created, err := s.repo.CreateSlots(ctx, candidates)
	if err != nil {
		return 0, err
	}

	if created > 0 {
		if err := s.cache.DeletePattern(ctx, constants.PatternClubViews(clubID)); err != nil {
			s.log.Warn("failed to invalidate calendar cache", slog.Any("error", err))
		}
	}

	s.log.Info("slots generated",
		slog.String("club_id", clubID.String()),
		slog.Int("courts", len(courts)),
		slog.Int("created", created),
		slog.Int("skipped", len(candidates)-created),
	)
	return created, nil
}

func (s *service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Slot, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *service) Transition(ctx context.Context, actor users.Actor, slotID uuid.UUID, to Status) (*TransitionResult, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}
	return s.applyTransition(ctx, slotID, to)
}

func (s *service) SystemTransition(ctx context.Context, slotID uuid.UUID, to Status) (*TransitionResult, error) {
	return s.applyTransition(ctx, slotID, to)
}

func (s *service) applyTransition(ctx context.Context, slotID uuid.UUID, to Status) (*TransitionResult, error) {
	from, applied, err := s.repo.UpdateStatusLocked(ctx, slotID, func(current Status) (Status, error) {
		if !current.CanTransition(to) {
			return current, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
		}
		return to, nil
	})
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{SlotID: slotID, From: from, To: applied}

	// Terminal per-slot states may advance the owning booking, but only
	// when this is the booking's chronologically last slot.
	if applied.IsTerminal() && s.propagator != nil {
		if err := s.propagator.SlotReachedTerminal(ctx, slotID, applied); err != nil {
			return nil, fmt.Errorf("booking propagation for slot %s: %w", slotID, err)
		}
	}
	return result, nil
}

func (s *service) BulkTransition(ctx context.Context, actor users.Actor, items []TransitionItem) ([]TransitionResult, []TransitionError) {
	if !actor.IsManager() {
		errs := make([]TransitionError, 0, len(items))
		for _, it := range items {
			errs = append(errs, TransitionError{SlotID: it.SlotID, Detail: users.ErrForbidden.Error()})
		}
		return nil, errs
	}

	var (
		updated []TransitionResult
		errs    []TransitionError
	)
	for _, it := range items {
		res, err := s.applyTransition(ctx, it.SlotID, it.To)
		if err != nil {
			errs = append(errs, TransitionError{SlotID: it.SlotID, Detail: err.Error()})
			continue
		}
		updated = append(updated, *res)
	}
	return updated, errs
}
