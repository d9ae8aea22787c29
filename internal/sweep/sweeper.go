package sweep

import (
	"context"
	"errors"
	"log/slog"

	"courtly/internal/shared/clock"
	"courtly/internal/slots"
	"courtly/pkg/logger"
)

// Result summarizes one sweep pass.
type Result struct {
	Scanned  int `json:"scanned"`
	Expired  int `json:"expired"`
	NoShows  int `json:"no_shows"`
	Endgames int `json:"endgames"`
	Failed   int `json:"failed"`
}

// Sweeper moves slots whose time window has elapsed into their terminal
// states. Each slot is handled independently under its own row lock, so a
// pass is safe to repeat and to run concurrently with live bookings.
type Sweeper struct {
	repo    slots.Repository
	slotSvc slots.Service
	clk     clock.Clock
	log     *logger.Logger
}

func NewSweeper(repo slots.Repository, slotSvc slots.Service, clk clock.Clock, log *logger.Logger) *Sweeper {
	return &Sweeper{
		repo:    repo,
		slotSvc: slotSvc,
		clk:     clk,
		log:     log,
	}
}

// Run performs one sweep pass, collect-and-continue: one bad slot never
// stops the rest.
func (s *Sweeper) Run(ctx context.Context) (*Result, error) {
	now := s.clk.Now()
	candidates, err := s.repo.FindSweepCandidates(ctx, now)
	if err != nil {
		return nil, err
	}

	res := &Result{Scanned: len(candidates)}
	for _, sl := range candidates {
		target, ok := Evaluate(sl.CurrentStatus(), sl.StartAt, sl.EndAt, now)
		if !ok {
			continue
		}

		// SystemTransition re-reads the status under a lock, so a slot a
		// manager just touched fails the transition check instead of
		// being clobbered.
		if _, err := s.slotSvc.SystemTransition(ctx, sl.ID, target); err != nil {
			if errors.Is(err, slots.ErrInvalidTransition) {
				continue
			}
			res.Failed++
			s.log.ErrorWithContext(ctx, "sweep transition failed", err, map[string]interface{}{
				"slot_id": sl.ID.String(),
				"target":  target.String(),
			})
			continue
		}

		switch target {
		case slots.StatusExpired:
			res.Expired++
		case slots.StatusNoShow:
			res.NoShows++
		case slots.StatusEndgame:
			res.Endgames++
		}
	}

	if res.Scanned > 0 {
		s.log.Info("sweep pass complete",
			slog.Int("scanned", res.Scanned),
			slog.Int("expired", res.Expired),
			slog.Int("no_shows", res.NoShows),
			slog.Int("endgames", res.Endgames),
			slog.Int("failed", res.Failed),
		)
	}
	return res, nil
}
