package slots

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"courtly/internal/shared/constants"

	"github.com/google/uuid"
)

const dayKeyLayout = "02-01-06"

// SlotView is one slot as presented in calendar views.
type SlotView struct {
	SlotStatus  Status `json:"slot_status"`
	ServiceDate string `json:"service_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	CourtID     string `json:"court"`
	CourtName   string `json:"court_name"`
	PriceCoins  int    `json:"price_coin"`
}

// DayAvailability is the public per-day availability summary.
type DayAvailability struct {
	Date             string     `json:"date"`
	AvailablePercent float64    `json:"available_percent"`
	AvailableSlots   []SlotView `json:"available_slots"`
}

// MonthAvailabilityResponse is the public calendar payload.
type MonthAvailabilityResponse struct {
	Month string            `json:"month"`
	Days  []DayAvailability `json:"days"`
}

// DaySlots groups every slot of one day keyed by slot id.
type DaySlots struct {
	Date         string              `json:"date"`
	BookingSlots map[string]SlotView `json:"booking_slots"`
}

// MonthViewResponse is the authenticated full-month grid payload.
type MonthViewResponse struct {
	Month string     `json:"month"`
	Days  []DaySlots `json:"days"`
}

func monthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// MonthAvailability returns, for each day of the month, the fraction of
// slots still open plus the open slots themselves. Public endpoint, so the
// result is served cache-aside.
func (s *service) MonthAvailability(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthAvailabilityResponse, error) {
	key := constants.BuildMonthAvailabilityKey(clubID, year, month)

	var resp MonthAvailabilityResponse
	err := s.cache.GetOrSet(ctx, key, s.viewTTL, func() (interface{}, error) {
		return s.buildMonthAvailability(ctx, clubID, year, month)
	}, &resp)
	if err != nil {
		// Cache trouble must not take the calendar down.
		s.log.Warn("slot view cache unavailable, serving direct",
			slog.String("key", key), slog.Any("error", err))
		built, buildErr := s.buildMonthAvailability(ctx, clubID, year, month)
		if buildErr != nil {
			return nil, buildErr
		}
		return built, nil
	}
	return &resp, nil
}

func (s *service) buildMonthAvailability(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthAvailabilityResponse, error) {
	first, last := monthBounds(year, month)
	found, err := s.repo.FindForClubBetween(ctx, clubID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for club %s: %w", clubID, err)
	}

	type dayAgg struct {
		total     int
		available int
		slots     []SlotView
	}
	byDay := make(map[string]*dayAgg)

	for _, sl := range found {
		key := sl.ServiceDate.Format(dayKeyLayout)
		agg, ok := byDay[key]
		if !ok {
			agg = &dayAgg{}
			byDay[key] = agg
		}
		agg.total++

		status := sl.CurrentStatus()
		// Expired slots never come back, but they still count as unsold
		// capacity for the percentage.
		if status == StatusAvailable || status == StatusExpired {
			agg.available++
		}
		if status == StatusAvailable {
			agg.slots = append(agg.slots, newSlotView(&sl))
		}
	}

	resp := &MonthAvailabilityResponse{Month: first.Format("01-06")}
	for key, agg := range byDay {
		percent := 0.0
		if agg.total > 0 {
			percent = float64(agg.available) / float64(agg.total)
		}
		resp.Days = append(resp.Days, DayAvailability{
			Date:             key,
			AvailablePercent: roundTo2(percent),
			AvailableSlots:   agg.slots,
		})
	}
	sortDays(resp.Days, func(d DayAvailability) string { return d.Date })
	return resp, nil
}

// MonthView returns every remaining slot of the month grouped by day, from
// today onward. Served cache-aside like the public calendar.
func (s *service) MonthView(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthViewResponse, error) {
	_, last := monthBounds(year, month)
	if last.Before(dateOnly(s.clk.Now())) {
		return nil, fmt.Errorf("cannot view past months")
	}

	key := constants.BuildMonthViewKey(clubID, year, month)

	var resp MonthViewResponse
	err := s.cache.GetOrSet(ctx, key, s.viewTTL, func() (interface{}, error) {
		return s.buildMonthView(ctx, clubID, year, month)
	}, &resp)
	if err != nil {
		s.log.Warn("slot view cache unavailable, serving direct",
			slog.String("key", key), slog.Any("error", err))
		return s.buildMonthView(ctx, clubID, year, month)
	}
	return &resp, nil
}

func (s *service) buildMonthView(ctx context.Context, clubID uuid.UUID, year int, month time.Month) (*MonthViewResponse, error) {
	first, last := monthBounds(year, month)
	today := dateOnly(s.clk.Now())
	if last.Before(today) {
		return nil, fmt.Errorf("cannot view past months")
	}
	if first.Before(today) {
		first = today
	}

	found, err := s.repo.FindForClubBetween(ctx, clubID, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for club %s: %w", clubID, err)
	}

	byDay := make(map[string]map[string]SlotView)
	for _, sl := range found {
		key := sl.ServiceDate.Format(dayKeyLayout)
		if byDay[key] == nil {
			byDay[key] = make(map[string]SlotView)
		}
		byDay[key][sl.ID.String()] = newSlotView(&sl)
	}

	resp := &MonthViewResponse{Month: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("01-06")}
	for key, slots := range byDay {
		resp.Days = append(resp.Days, DaySlots{Date: key, BookingSlots: slots})
	}
	sortDays(resp.Days, func(d DaySlots) string { return d.Date })
	return resp, nil
}

func newSlotView(sl *Slot) SlotView {
	view := SlotView{
		SlotStatus:  sl.CurrentStatus(),
		ServiceDate: sl.ServiceDate.Format("2006-01-02"),
		StartTime:   sl.StartAt.Format("15:04"),
		EndTime:     sl.EndAt.Format("15:04"),
		CourtID:     sl.CourtID.String(),
		PriceCoins:  sl.PriceCoins,
	}
	if sl.Court != nil {
		view.CourtName = sl.Court.Name
	}
	return view
}

func sortDays[T any](days []T, key func(T) string) {
	sort.Slice(days, func(i, j int) bool {
		ti, _ := time.Parse(dayKeyLayout, key(days[i]))
		tj, _ := time.Parse(dayKeyLayout, key(days[j]))
		return ti.Before(tj)
	})
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
