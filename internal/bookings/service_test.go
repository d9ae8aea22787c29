package bookings

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/clock"
	"courtly/internal/slots"
	"courtly/internal/users"
	"courtly/internal/wallet"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo keeps bookings and slot holds in memory. CreateAllocated follows
// the same all-or-nothing contract as the real repository but simulates the
// wallet leg with chargeErr instead of running the charge closure.
type fakeRepo struct {
	mu        sync.Mutex
	slotRows  map[uuid.UUID]*slots.Slot
	available map[uuid.UUID]bool
	statuses  map[uuid.UUID]slots.Status
	bookings  map[uuid.UUID]*Booking
	ledger    []wallet.LedgerEntry
	chargeErr error

	lastTarget slots.Status
	noTaken    map[string]bool
	noChecks   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		slotRows:  make(map[uuid.UUID]*slots.Slot),
		available: make(map[uuid.UUID]bool),
		statuses:  make(map[uuid.UUID]slots.Status),
		bookings:  make(map[uuid.UUID]*Booking),
		noTaken:   make(map[string]bool),
	}
}

func (f *fakeRepo) addSlot(sl *slots.Slot) {
	f.slotRows[sl.ID] = sl
	f.available[sl.ID] = true
	f.statuses[sl.ID] = slots.StatusAvailable
}

func (f *fakeRepo) CreateAllocated(ctx context.Context, booking *Booking, slotIDs []uuid.UUID, slotTarget slots.Status, charge ChargeFunc) error {
	if len(slotIDs) == 0 {
		return ErrNoSlots
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var unavailable []uuid.UUID
	for _, id := range slotIDs {
		if !f.available[id] {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return &SlotUnavailableError{SlotIDs: unavailable}
	}

	total := 0
	links := make([]BookingSlot, 0, len(slotIDs))
	for _, id := range slotIDs {
		sl := f.slotRows[id]
		total += sl.PriceCoins
		links = append(links, BookingSlot{
			ID:         uuid.New(),
			SlotID:     id,
			PriceCoins: sl.PriceCoins,
			Slot:       sl,
		})
	}

	booking.ID = uuid.New()
	booking.TotalCost = total
	booking.BookingDate = f.slotRows[slotIDs[0]].ServiceDate
	booking.Slots = links

	if f.chargeErr != nil {
		// Simulated charge failure rolls the allocation back untouched.
		return f.chargeErr
	}

	for _, id := range slotIDs {
		f.available[id] = false
		f.statuses[id] = slotTarget
	}
	f.lastTarget = slotTarget
	stored := *booking
	f.bookings[booking.ID] = &stored
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.BookingNo == bookingNo {
			return b, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID != nil && *b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListForClubDate(ctx context.Context, clubID uuid.UUID, date time.Time) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.ClubID == clubID && b.BookingDate.Equal(date) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUpcomingForClub(ctx context.Context, clubID uuid.UUID, from time.Time) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if b.ClubID != clubID || b.BookingDate.Before(from) {
			continue
		}
		if b.Status == StatusUpcoming || b.Status == StatusWalkin || b.Status == StatusCheckin {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.Status != StatusUpcoming && b.Status != StatusWalkin && b.Status != StatusCheckin {
			continue
		}
		for _, link := range b.Slots {
			if link.SlotID == slotID {
				return b, nil
			}
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) UpdateLocked(ctx context.Context, id uuid.UUID, apply func(tx *gorm.DB, b *Booking) error) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *b
	if err := apply(nil, &copied); err != nil {
		return nil, err
	}
	f.bookings[id] = &copied
	return &copied, nil
}

// The tx-scoped methods below run inside UpdateLocked's apply callback,
// which already holds f.mu, so they must not lock it again.

func (f *fakeRepo) LockSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID) ([]slots.SlotStatus, error) {
	out := make([]slots.SlotStatus, 0, len(slotIDs))
	for _, id := range slotIDs {
		status, ok := f.statuses[id]
		if !ok {
			continue
		}
		out = append(out, slots.SlotStatus{SlotID: id, Status: status})
	}
	sort.Slice(out, func(i, j int) bool {
		return f.slotRows[out[i].SlotID].StartAt.Before(f.slotRows[out[j].SlotID].StartAt)
	})
	return out, nil
}

func (f *fakeRepo) SetSlotStatuses(tx *gorm.DB, slotIDs []uuid.UUID, target slots.Status) error {
	for _, id := range slotIDs {
		f.statuses[id] = target
		f.available[id] = target == slots.StatusAvailable
	}
	f.lastTarget = target
	return nil
}

func (f *fakeRepo) ApplyLedger(tx *gorm.DB, entry wallet.LedgerEntry) (int, error) {
	f.ledger = append(f.ledger, entry)
	balance := 0
	for _, e := range f.ledger {
		if e.UserID == entry.UserID {
			balance += e.Amount
		}
	}
	return balance, nil
}

func (f *fakeRepo) BookingNoExists(ctx context.Context, bookingNo string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noChecks++
	return f.noTaken[bookingNo], nil
}

type fakeSlotRepo struct {
	inRange []slots.Slot
}

func (f *fakeSlotRepo) CreateSlots(ctx context.Context, s []slots.Slot) (int, error) { return 0, nil }
func (f *fakeSlotRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]slots.Slot, error) {
	return nil, nil
}
func (f *fakeSlotRepo) FindInRange(ctx context.Context, courtID uuid.UUID, date, startAt, endAt time.Time) ([]slots.Slot, error) {
	return f.inRange, nil
}
func (f *fakeSlotRepo) FindForClubBetween(ctx context.Context, clubID uuid.UUID, from, to time.Time) ([]slots.Slot, error) {
	return nil, nil
}
func (f *fakeSlotRepo) FindSweepCandidates(ctx context.Context, now time.Time) ([]slots.Slot, error) {
	return nil, nil
}
func (f *fakeSlotRepo) UpdateStatusLocked(ctx context.Context, slotID uuid.UUID, apply func(current slots.Status) (slots.Status, error)) (slots.Status, slots.Status, error) {
	return "", "", nil
}

type fakeCatalog struct {
	clubs map[uuid.UUID]bool
}

func (f *fakeCatalog) ClubExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.clubs[id], nil
}
func (f *fakeCatalog) CourtExists(ctx context.Context, id uuid.UUID) (bool, error) { return true, nil }
func (f *fakeCatalog) GetCourt(ctx context.Context, id uuid.UUID) (*catalog.Court, error) {
	return nil, catalog.ErrNotFound
}
func (f *fakeCatalog) CourtsByClub(ctx context.Context, clubID uuid.UUID) ([]catalog.Court, error) {
	return nil, nil
}
func (f *fakeCatalog) HoursForClub(ctx context.Context, clubID uuid.UUID) ([]catalog.BusinessHour, error) {
	return nil, nil
}
func (f *fakeCatalog) Clubs(ctx context.Context) ([]catalog.Club, error) { return nil, nil }

type fakeUserDir struct{}

func (fakeUserDir) LookupUser(ctx context.Context, userID uuid.UUID) (string, string, error) {
	return "Alice Baseline", "alice@courtly.local", nil
}

type fixture struct {
	repo     *fakeRepo
	slotRepo *fakeSlotRepo
	clubID   uuid.UUID
	clk      *clock.Fixed
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	slotRepo := &fakeSlotRepo{}
	clubID := uuid.New()
	cat := &fakeCatalog{clubs: map[uuid.UUID]bool{clubID: true}}
	clk := &clock.Fixed{Current: time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)}

	svc := NewService(repo, slotRepo, cat, fakeUserDir{}, nil, clk, logger.New(), 24*time.Hour)
	return &fixture{repo: repo, slotRepo: slotRepo, clubID: clubID, clk: clk, svc: svc}
}

// seedSlots adds n consecutive 30-minute slots starting at start.
func (fx *fixture) seedSlots(n int, start time.Time, price int) []uuid.UUID {
	courtID := uuid.New()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		s := start.Add(time.Duration(i) * slots.SlotDuration)
		sl := &slots.Slot{
			ID:          uuid.New(),
			CourtID:     courtID,
			ServiceDate: time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC),
			StartAt:     s,
			EndAt:       s.Add(slots.SlotDuration),
			PriceCoins:  price,
			Court:       &catalog.Court{ID: courtID, ClubID: fx.clubID, Name: "Court 1"},
		}
		fx.repo.addSlot(sl)
		ids = append(ids, sl.ID)
	}
	return ids
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func player() users.Actor {
	return users.Actor{UserID: uuid.New(), Role: users.RolePlayer}
}

func manager() users.Actor {
	return users.Actor{UserID: uuid.New(), Role: users.RoleManager}
}

func TestCreateBookingSuccess(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(2, fx.clk.Current.Add(48*time.Hour), 100)
	actor := player()

	resp, err := fx.svc.CreateBooking(context.Background(), actor, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusUpcoming, resp.Status)
	assert.Equal(t, MethodOnline, resp.Method)
	assert.Equal(t, PaymentCoins, resp.PaymentMethod)
	assert.Equal(t, 200, resp.TotalCost)
	assert.Regexp(t, regexp.MustCompile(`^BK-[0-9A-F]{10}$`), resp.BookingNo)
	assert.True(t, resp.AbleToCancel)
	assert.Len(t, resp.Slots, 2)
	assert.Equal(t, slots.StatusBooked, fx.repo.lastTarget)
}

func TestCreateBookingUnknownClub(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)

	_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID:  uuid.New().String(),
		SlotIDs: idsToStrings(ids),
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCreateBookingWithoutSlots(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID: fx.clubID.String(),
	})
	assert.ErrorIs(t, err, ErrNoSlots)
}

func TestCreateBookingReportsAllUnavailableSlots(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(3, fx.clk.Current.Add(48*time.Hour), 100)
	fx.repo.available[ids[0]] = false
	fx.repo.available[ids[2]] = false

	_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})

	var unavailable *SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.ElementsMatch(t, []uuid.UUID{ids[0], ids[2]}, unavailable.SlotIDs)
}

func TestCreateBookingInsufficientBalance(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 500)
	fx.repo.chargeErr = wallet.ErrInsufficientBalance

	_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	assert.ErrorIs(t, err, wallet.ErrInsufficientBalance)

	// Failed charges release the slots.
	assert.True(t, fx.repo.available[ids[0]])
	assert.Empty(t, fx.repo.bookings)
}

func TestCreateBookingByTimeRange(t *testing.T) {
	fx := newFixture(t)
	start := fx.clk.Current.Add(48 * time.Hour).Truncate(time.Hour)
	ids := fx.seedSlots(2, start, 100)

	covering := make([]slots.Slot, 0, len(ids))
	for _, id := range ids {
		covering = append(covering, *fx.repo.slotRows[id])
	}
	fx.slotRepo.inRange = covering

	resp, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID: fx.clubID.String(),
		Items: []TimeRangeItem{{
			CourtID:   uuid.New().String(),
			Date:      start.Format("2006-01-02"),
			StartTime: start.Format("15:04"),
			EndTime:   start.Add(time.Hour).Format("15:04"),
		}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 2)
}

func TestCreateBookingByTimeRangeRejectsGaps(t *testing.T) {
	fx := newFixture(t)
	start := fx.clk.Current.Add(48 * time.Hour).Truncate(time.Hour)
	ids := fx.seedSlots(1, start, 100)

	// Only one slot covers a requested hour: the range has a hole.
	fx.slotRepo.inRange = []slots.Slot{*fx.repo.slotRows[ids[0]]}

	_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID: fx.clubID.String(),
		Items: []TimeRangeItem{{
			CourtID:   uuid.New().String(),
			Date:      start.Format("2006-01-02"),
			StartTime: start.Format("15:04"),
			EndTime:   start.Add(time.Hour).Format("15:04"),
		}},
	})
	assert.ErrorContains(t, err, "not fully covered")
}

func TestCreateBookingConcurrentSingleWinner(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)

	const contenders = 8
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
				ClubID:  fx.clubID.String(),
				SlotIDs: idsToStrings(ids),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var unavailable *SlotUnavailableError
		require.ErrorAs(t, err, &unavailable)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, contenders-1, conflicts)
}

func TestWalkInRequiresManager(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(time.Hour), 100)

	_, err := fx.svc.CreateWalkIn(context.Background(), player(), &WalkInRequest{
		ClubID:       fx.clubID.String(),
		SlotIDs:      idsToStrings(ids),
		CustomerName: "Walk In",
	})
	assert.ErrorIs(t, err, users.ErrForbidden)
}

func TestWalkInBooking(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(time.Hour), 100)

	resp, err := fx.svc.CreateWalkIn(context.Background(), manager(), &WalkInRequest{
		ClubID:       fx.clubID.String(),
		SlotIDs:      idsToStrings(ids),
		CustomerName: "Walk In",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusWalkin, resp.Status)
	assert.Equal(t, MethodWalkin, resp.Method)
	assert.Equal(t, PaymentFree, resp.PaymentMethod)
	assert.Equal(t, slots.StatusWalkin, fx.repo.lastTarget)

	stored, err := fx.repo.GetByBookingNo(context.Background(), resp.BookingNo)
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
}

func TestCheckInRequiresManager(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.CheckIn(context.Background(), player(), "BK-0000000000")
	assert.ErrorIs(t, err, users.ErrForbidden)
}

func TestCancelRequiresOwnershipOrManager(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)
	owner := player()

	resp, err := fx.svc.CreateBooking(context.Background(), owner, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	_, err = fx.svc.Cancel(context.Background(), player(), resp.BookingNo)
	assert.ErrorIs(t, err, users.ErrForbidden)

	_, err = fx.svc.GetByBookingNo(context.Background(), player(), resp.BookingNo)
	assert.ErrorIs(t, err, users.ErrForbidden)

	got, err := fx.svc.GetByBookingNo(context.Background(), manager(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, resp.BookingNo, got.BookingNo)
}

func TestWithinCancelWindow(t *testing.T) {
	fx := newFixture(t)
	svc := fx.svc.(*service)

	booking := func(start time.Time) *Booking {
		id := uuid.New()
		return &Booking{
			Slots: []BookingSlot{{
				SlotID: id,
				Slot:   &slots.Slot{ID: id, StartAt: start, EndAt: start.Add(slots.SlotDuration)},
			}},
		}
	}

	now := fx.clk.Current
	assert.True(t, svc.withinCancelWindow(booking(now.Add(48*time.Hour))))
	assert.True(t, svc.withinCancelWindow(booking(now.Add(24*time.Hour))), "exactly at the window boundary")
	assert.False(t, svc.withinCancelWindow(booking(now.Add(23*time.Hour))))
	assert.False(t, svc.withinCancelWindow(booking(now.Add(-time.Hour))))
	assert.False(t, svc.withinCancelWindow(&Booking{}), "no loaded slots")
}

func TestCancelWindowClosed(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)
	owner := player()

	resp, err := fx.svc.CreateBooking(context.Background(), owner, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	// The window applies to managers too.
	fx.clk.Advance(30 * time.Hour)
	_, err = fx.svc.Cancel(context.Background(), manager(), resp.BookingNo)
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)

	_, err = fx.svc.Cancel(context.Background(), owner, resp.BookingNo)
	assert.ErrorIs(t, err, ErrCancellationWindowClosed)
}

func TestCancelRefundsAndReleasesSlots(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(2, fx.clk.Current.Add(48*time.Hour), 100)
	owner := player()

	resp, err := fx.svc.CreateBooking(context.Background(), owner, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	cancelled, err := fx.svc.Cancel(context.Background(), owner, resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.False(t, cancelled.AbleToCancel)

	// Every slot reopens for sale.
	for _, id := range ids {
		assert.Equal(t, slots.StatusAvailable, fx.repo.statuses[id])
		assert.True(t, fx.repo.available[id])
	}

	// The refund credits back exactly what was captured.
	require.Len(t, fx.repo.ledger, 1)
	entry := fx.repo.ledger[0]
	assert.Equal(t, wallet.EntryRefund, entry.EntryType)
	assert.Equal(t, resp.TotalCost, entry.Amount)
	assert.Equal(t, owner.UserID, entry.UserID)
	assert.Equal(t, resp.BookingNo, entry.Reference)

	_, err = fx.svc.Cancel(context.Background(), owner, resp.BookingNo)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestCheckInMovesSlotsToPlaying(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(2, fx.clk.Current.Add(time.Hour), 100)

	resp, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	checked, err := fx.svc.CheckIn(context.Background(), manager(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckin, checked.Status)
	for _, id := range ids {
		assert.Equal(t, slots.StatusPlaying, fx.repo.statuses[id])
	}

	// A second check-in has nowhere to go.
	_, err = fx.svc.CheckIn(context.Background(), manager(), resp.BookingNo)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelWalkInBooking(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(72*time.Hour), 100)

	resp, err := fx.svc.CreateWalkIn(context.Background(), manager(), &WalkInRequest{
		ClubID:       fx.clubID.String(),
		SlotIDs:      idsToStrings(ids),
		CustomerName: "Walk In",
	})
	require.NoError(t, err)
	assert.True(t, resp.AbleToCancel)

	cancelled, err := fx.svc.Cancel(context.Background(), manager(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, slots.StatusAvailable, fx.repo.statuses[ids[0]])

	// Walk-ins never paid coins, so nothing comes back.
	assert.Empty(t, fx.repo.ledger)
}

func TestIsLastSlot(t *testing.T) {
	first := uuid.New()
	last := uuid.New()
	base := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	b := &Booking{
		Slots: []BookingSlot{
			{SlotID: first, Slot: &slots.Slot{ID: first, EndAt: base.Add(30 * time.Minute)}},
			{SlotID: last, Slot: &slots.Slot{ID: last, EndAt: base.Add(time.Hour)}},
		},
	}

	assert.False(t, b.IsLastSlot(first))
	assert.True(t, b.IsLastSlot(last))
	assert.False(t, b.IsLastSlot(uuid.New()))
}

func TestSlotReachedTerminalAdvancesBooking(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(2, fx.clk.Current.Add(48*time.Hour), 100)

	resp, err := fx.svc.CreateBooking(context.Background(), player(), &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	// The first slot resolving changes nothing.
	require.NoError(t, fx.svc.SlotReachedTerminal(context.Background(), ids[0], slots.StatusNoShow))
	b, err := fx.repo.GetByBookingNo(context.Background(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusUpcoming, b.Status)

	// The chronologically last slot pulls the booking with it.
	require.NoError(t, fx.svc.SlotReachedTerminal(context.Background(), ids[1], slots.StatusNoShow))
	b, err = fx.repo.GetByBookingNo(context.Background(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusNoShow, b.Status)
}

func TestSlotReachedTerminalIgnoresExpired(t *testing.T) {
	fx := newFixture(t)
	err := fx.svc.SlotReachedTerminal(context.Background(), uuid.New(), slots.StatusExpired)
	assert.NoError(t, err)
}

func TestSlotReachedTerminalIgnoresUnlinkedSlot(t *testing.T) {
	fx := newFixture(t)
	err := fx.svc.SlotReachedTerminal(context.Background(), uuid.New(), slots.StatusNoShow)
	assert.NoError(t, err)
}

func TestSlotReachedTerminalNeverOverwritesCancelled(t *testing.T) {
	fx := newFixture(t)
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)
	owner := player()

	resp, err := fx.svc.CreateBooking(context.Background(), owner, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	// Flip the stored booking to cancelled behind the service's back.
	stored, err := fx.repo.GetByBookingNo(context.Background(), resp.BookingNo)
	require.NoError(t, err)
	stored.Status = StatusCancelled

	require.NoError(t, fx.svc.SlotReachedTerminal(context.Background(), ids[0], slots.StatusNoShow))
	after, err := fx.repo.GetByBookingNo(context.Background(), resp.BookingNo)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, after.Status)
}

func TestNewBookingNoRetriesOnCollision(t *testing.T) {
	fx := newFixture(t)
	svc := fx.svc.(*service)

	no, err := svc.newBookingNo(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^BK-[0-9A-F]{10}$`), no)

	// Force a universe where every number is taken.
	svcAllTaken := NewService(&alwaysTakenRepo{fakeRepo: newFakeRepo()}, fx.slotRepo, &fakeCatalog{}, fakeUserDir{}, nil, fx.clk, logger.New(), 24*time.Hour).(*service)

	_, err = svcAllTaken.newBookingNo(context.Background())
	assert.Error(t, err)
}

type alwaysTakenRepo struct {
	*fakeRepo
}

func (a *alwaysTakenRepo) BookingNoExists(ctx context.Context, bookingNo string) (bool, error) {
	return true, nil
}

func TestMyBookings(t *testing.T) {
	fx := newFixture(t)
	owner := player()
	ids := fx.seedSlots(1, fx.clk.Current.Add(48*time.Hour), 100)

	_, err := fx.svc.CreateBooking(context.Background(), owner, &CreateBookingRequest{
		ClubID:  fx.clubID.String(),
		SlotIDs: idsToStrings(ids),
	})
	require.NoError(t, err)

	mine, err := fx.svc.MyBookings(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := fx.svc.MyBookings(context.Background(), player())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListForClubDateRequiresManager(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.ListForClubDate(context.Background(), player(), fx.clubID, fx.clk.Current)
	assert.ErrorIs(t, err, users.ErrForbidden)
}

func TestListUpcoming(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.ListUpcoming(context.Background(), player(), fx.clubID)
	assert.ErrorIs(t, err, users.ErrForbidden)

	today := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	add := func(date time.Time, status Status) {
		id := uuid.New()
		fx.repo.bookings[id] = &Booking{ID: id, ClubID: fx.clubID, BookingDate: date, Status: status}
	}
	add(today, StatusUpcoming)
	add(today.AddDate(0, 0, 1), StatusCheckin)
	add(today.AddDate(0, 0, -1), StatusUpcoming)
	add(today, StatusCancelled)

	out, err := fx.svc.ListUpcoming(context.Background(), manager(), fx.clubID)
	require.NoError(t, err)
	assert.Len(t, out, 2, "past and resolved bookings stay out of the desk view")
}

func TestSlotUnavailableErrorMessage(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	err := &SlotUnavailableError{SlotIDs: []uuid.UUID{id1, id2}}
	assert.Contains(t, err.Error(), id1.String())
	assert.Contains(t, err.Error(), id2.String())
	assert.True(t, errors.As(error(err), new(*SlotUnavailableError)))
}
