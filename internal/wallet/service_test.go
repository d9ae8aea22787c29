package wallet

import (
	"context"
	"testing"
	"time"

	"courtly/internal/users"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeWalletRepo sums ledger entries in memory, mirroring the
// ledger-is-authoritative contract of the real repository.
type fakeWalletRepo struct {
	entries map[uuid.UUID][]LedgerEntry
	topups  map[uuid.UUID]*TopupRequest
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		entries: make(map[uuid.UUID][]LedgerEntry),
		topups:  make(map[uuid.UUID]*TopupRequest),
	}
}

func (f *fakeWalletRepo) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	total := 0
	for _, e := range f.entries[userID] {
		total += e.Amount
	}
	return total, nil
}

func (f *fakeWalletRepo) Ledger(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error) {
	ledger := f.entries[userID]
	if limit > 0 && len(ledger) > limit {
		ledger = ledger[:limit]
	}
	return ledger, nil
}

func (f *fakeWalletRepo) LedgerAll(ctx context.Context, limit int) ([]LedgerEntry, error) {
	var out []LedgerEntry
	for _, ledger := range f.entries {
		out = append(out, ledger...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeWalletRepo) Apply(ctx context.Context, entry LedgerEntry) (int, error) {
	current, _ := f.Balance(ctx, entry.UserID)
	next := current + entry.Amount
	if next < 0 {
		return current, ErrInsufficientBalance
	}
	entry.ID = uuid.New()
	f.entries[entry.UserID] = append(f.entries[entry.UserID], entry)
	return next, nil
}

func (f *fakeWalletRepo) CreateTopup(ctx context.Context, req *TopupRequest) error {
	req.ID = uuid.New()
	req.Status = TopupPending
	req.CreatedAt = time.Now().UTC()
	f.topups[req.ID] = req
	return nil
}

func (f *fakeWalletRepo) GetTopup(ctx context.Context, id uuid.UUID) (*TopupRequest, error) {
	req, ok := f.topups[id]
	if !ok {
		return nil, ErrTopupNotFound
	}
	return req, nil
}

func (f *fakeWalletRepo) ListTopups(ctx context.Context, status TopupStatus) ([]TopupRequest, error) {
	var out []TopupRequest
	for _, req := range f.topups {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) ListTopupsForUser(ctx context.Context, userID uuid.UUID) ([]TopupRequest, error) {
	var out []TopupRequest
	for _, req := range f.topups {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (f *fakeWalletRepo) ReviewTopup(ctx context.Context, id uuid.UUID, reviewer uuid.UUID, approve bool, credit func(tx *gorm.DB, req *TopupRequest) error) (*TopupRequest, error) {
	req, ok := f.topups[id]
	if !ok {
		return nil, ErrTopupNotFound
	}
	if req.Status != TopupPending {
		return nil, ErrTopupAlreadyClosed
	}

	now := time.Now().UTC()
	req.ReviewedBy = &reviewer
	req.ReviewedAt = &now
	if approve {
		req.Status = TopupApproved
		// The real repository runs credit inside the review transaction;
		// the fake credits the ledger directly.
		if _, err := f.Apply(ctx, LedgerEntry{
			UserID:    req.UserID,
			EntryType: EntryTopup,
			Amount:    req.Amount,
		}); err != nil {
			return nil, err
		}
	} else {
		req.Status = TopupRejected
	}
	return req, nil
}

func newWalletService(repo Repository, initialCoins int) Service {
	return NewService(repo, logger.New(), initialCoins)
}

func topupReq(thb int) *TopupCreateRequest {
	return &TopupCreateRequest{
		AmountTHB:    thb,
		TransferDate: "2026-08-29",
		TransferTime: "14:30",
		SlipPath:     "slips/transfer.png",
	}
}

func TestGrantInitial(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 1000)
	userID := uuid.New()

	require.NoError(t, svc.GrantInitial(context.Background(), userID))

	balance, err := svc.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1000, balance)

	ledger, err := svc.GetLedger(context.Background(), userID, 10)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, EntryInitial, ledger[0].EntryType)
}

func TestGrantInitialIsIdempotent(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 1000)
	userID := uuid.New()

	require.NoError(t, svc.GrantInitial(context.Background(), userID))
	require.NoError(t, svc.GrantInitial(context.Background(), userID))

	balance, err := svc.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1000, balance)
}

func TestGrantInitialDisabled(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 0)
	userID := uuid.New()

	require.NoError(t, svc.GrantInitial(context.Background(), userID))
	balance, err := svc.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestRequestTopupValidation(t *testing.T) {
	svc := newWalletService(newFakeWalletRepo(), 1000)
	actor := users.Actor{UserID: uuid.New(), Role: users.RolePlayer}

	_, err := svc.RequestTopup(context.Background(), actor, topupReq(0))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RequestTopup(context.Background(), actor, topupReq(-50))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	bad := topupReq(500)
	bad.SlipPath = "slips/transfer.exe"
	_, err = svc.RequestTopup(context.Background(), actor, bad)
	assert.ErrorIs(t, err, ErrInvalidSlip)

	req, err := svc.RequestTopup(context.Background(), actor, topupReq(500))
	require.NoError(t, err)
	assert.Equal(t, TopupPending, req.Status)
	assert.Equal(t, actor.UserID, req.UserID)
	assert.Equal(t, 500, req.AmountTHB)
	assert.Equal(t, 500, req.Amount, "coins are pegged 1:1 to THB")
}

func TestReviewTopupRequiresManager(t *testing.T) {
	svc := newWalletService(newFakeWalletRepo(), 1000)
	playerActor := users.Actor{UserID: uuid.New(), Role: users.RolePlayer}

	_, err := svc.ReviewTopup(context.Background(), playerActor, uuid.New(), true)
	assert.ErrorIs(t, err, users.ErrForbidden)

	_, err = svc.ListTopups(context.Background(), playerActor, TopupPending)
	assert.ErrorIs(t, err, users.ErrForbidden)
}

func TestReviewTopupApprove(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 0)
	playerActor := users.Actor{UserID: uuid.New(), Role: users.RolePlayer}
	managerActor := users.Actor{UserID: uuid.New(), Role: users.RoleManager}

	req, err := svc.RequestTopup(context.Background(), playerActor, topupReq(500))
	require.NoError(t, err)

	reviewed, err := svc.ReviewTopup(context.Background(), managerActor, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, TopupApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, managerActor.UserID, *reviewed.ReviewedBy)

	balance, err := svc.GetBalance(context.Background(), playerActor.UserID)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)

	// A closed request cannot be reviewed twice.
	_, err = svc.ReviewTopup(context.Background(), managerActor, req.ID, false)
	assert.ErrorIs(t, err, ErrTopupAlreadyClosed)
}

func TestReviewTopupReject(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 0)
	playerActor := users.Actor{UserID: uuid.New(), Role: users.RolePlayer}
	managerActor := users.Actor{UserID: uuid.New(), Role: users.RoleManager}

	req, err := svc.RequestTopup(context.Background(), playerActor, topupReq(500))
	require.NoError(t, err)

	reviewed, err := svc.ReviewTopup(context.Background(), managerActor, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, TopupRejected, reviewed.Status)

	// Rejection moves no coins.
	balance, err := svc.GetBalance(context.Background(), playerActor.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestLedgerForUser(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 1000)
	playerActor := users.Actor{UserID: uuid.New(), Role: users.RolePlayer}
	managerActor := users.Actor{UserID: uuid.New(), Role: users.RoleManager}
	other := uuid.New()

	require.NoError(t, svc.GrantInitial(context.Background(), playerActor.UserID))
	require.NoError(t, svc.GrantInitial(context.Background(), other))

	_, err := svc.LedgerForUser(context.Background(), playerActor, other, 10)
	assert.ErrorIs(t, err, users.ErrForbidden)

	entries, err := svc.LedgerForUser(context.Background(), managerActor, other, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, other, entries[0].UserID)

	// Nil user id means the whole ledger.
	all, err := svc.LedgerForUser(context.Background(), managerActor, uuid.Nil, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBalanceNeverGoesNegative(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newWalletService(repo, 100)
	userID := uuid.New()
	require.NoError(t, svc.GrantInitial(context.Background(), userID))

	_, err := repo.Apply(context.Background(), LedgerEntry{
		UserID:    userID,
		EntryType: EntryCapture,
		Amount:    -150,
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	balance, err := svc.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
}
