package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"courtly/internal/users"
	"courtly/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Coins are pegged 1:1 to THB on top-up.
const coinsPerTHB = 1

// Service interface defines the contract for wallet business logic
type Service interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error)

	// LedgerForUser lists any user's ledger, or every user's when userID is
	// the nil UUID. Manager only.
	LedgerForUser(ctx context.Context, actor users.Actor, userID uuid.UUID, limit int) ([]LedgerEntry, error)

	// GrantInitial credits the signup grant exactly once per user.
	GrantInitial(ctx context.Context, userID uuid.UUID) error

	RequestTopup(ctx context.Context, actor users.Actor, req *TopupCreateRequest) (*TopupRequest, error)
	ReviewTopup(ctx context.Context, actor users.Actor, topupID uuid.UUID, approve bool) (*TopupRequest, error)
	ListTopups(ctx context.Context, actor users.Actor, status TopupStatus) ([]TopupRequest, error)
	MyTopups(ctx context.Context, actor users.Actor) ([]TopupRequest, error)
}

type service struct {
	repo         Repository
	log          *logger.Logger
	initialCoins int
}

func NewService(repo Repository, log *logger.Logger, initialCoins int) Service {
	return &service{repo: repo, log: log, initialCoins: initialCoins}
}

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.Balance(ctx, userID)
}

func (s *service) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]LedgerEntry, error) {
	return s.repo.Ledger(ctx, userID, limit)
}

func (s *service) LedgerForUser(ctx context.Context, actor users.Actor, userID uuid.UUID, limit int) ([]LedgerEntry, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}
	if userID == uuid.Nil {
		return s.repo.LedgerAll(ctx, limit)
	}
	return s.repo.Ledger(ctx, userID, limit)
}

func (s *service) GrantInitial(ctx context.Context, userID uuid.UUID) error {
	if s.initialCoins <= 0 {
		return nil
	}
	existing, err := s.repo.Ledger(ctx, userID, 1)
	if err != nil {
		return fmt.Errorf("failed to check ledger: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = s.repo.Apply(ctx, LedgerEntry{
		UserID:    userID,
		EntryType: EntryInitial,
		Amount:    s.initialCoins,
		Reference: "signup grant",
	})
	if err != nil {
		return fmt.Errorf("failed to grant initial coins: %w", err)
	}

	s.log.Info("initial coins granted",
		slog.String("user_id", userID.String()),
		slog.Int("amount", s.initialCoins),
	)
	return nil
}

func (s *service) RequestTopup(ctx context.Context, actor users.Actor, req *TopupCreateRequest) (*TopupRequest, error) {
	if req.AmountTHB <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validateSlipPath(req.SlipPath); err != nil {
		return nil, err
	}

	topup := &TopupRequest{
		UserID:       actor.UserID,
		AmountTHB:    req.AmountTHB,
		Amount:       req.AmountTHB * coinsPerTHB,
		TransferDate: req.TransferDate,
		TransferTime: req.TransferTime,
		SlipPath:     req.SlipPath,
	}
	if err := s.repo.CreateTopup(ctx, topup); err != nil {
		return nil, fmt.Errorf("failed to create topup request: %w", err)
	}
	return topup, nil
}

var slipExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

func validateSlipPath(slipPath string) error {
	if slipPath == "" {
		return nil
	}
	if !slipExtensions[strings.ToLower(path.Ext(slipPath))] {
		return ErrInvalidSlip
	}
	return nil
}

func (s *service) ReviewTopup(ctx context.Context, actor users.Actor, topupID uuid.UUID, approve bool) (*TopupRequest, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}

	reviewed, err := s.repo.ReviewTopup(ctx, topupID, actor.UserID, approve, func(tx *gorm.DB, req *TopupRequest) error {
		_, err := ApplyEntryTx(tx, LedgerEntry{
			UserID:    req.UserID,
			EntryType: EntryTopup,
			Amount:    req.Amount,
			Reference: fmt.Sprintf("topup %s", req.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("topup reviewed",
		slog.String("topup_id", topupID.String()),
		slog.String("reviewer", actor.UserID.String()),
		slog.String("status", string(reviewed.Status)),
	)
	return reviewed, nil
}

func (s *service) ListTopups(ctx context.Context, actor users.Actor, status TopupStatus) ([]TopupRequest, error) {
	if !actor.IsManager() {
		return nil, users.ErrForbidden
	}
	return s.repo.ListTopups(ctx, status)
}

func (s *service) MyTopups(ctx context.Context, actor users.Actor) ([]TopupRequest, error) {
	return s.repo.ListTopupsForUser(ctx, actor.UserID)
}
