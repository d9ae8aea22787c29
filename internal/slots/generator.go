package slots

import (
	"fmt"
	"time"

	"courtly/internal/catalog"

	"github.com/google/uuid"
)

// OpenWindow is one court-day open interval resolved from business hours.
type OpenWindow struct {
	Open  time.Time
	Close time.Time
}

// buildWindows resolves a club's business hours into per-day open windows
// for the requested date range. Days without hours are closed.
func buildWindows(hours []catalog.BusinessHour, from, to time.Time, loc *time.Location) (map[time.Time]OpenWindow, error) {
	byWeekday := make(map[time.Weekday]catalog.BusinessHour, len(hours))
	for _, h := range hours {
		byWeekday[h.Weekday] = h
	}

	windows := make(map[time.Time]OpenWindow)
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		h, open := byWeekday[d.Weekday()]
		if !open {
			continue
		}
		openAt, err := combineClock(d, h.OpenAt, loc)
		if err != nil {
			return nil, fmt.Errorf("club hours for %s: %w", d.Weekday(), err)
		}
		closeAt, err := combineClock(d, h.CloseAt, loc)
		if err != nil {
			return nil, fmt.Errorf("club hours for %s: %w", d.Weekday(), err)
		}
		if !openAt.Before(closeAt) {
			return nil, fmt.Errorf("club hours for %s: open %s is not before close %s", d.Weekday(), h.OpenAt, h.CloseAt)
		}
		windows[d] = OpenWindow{Open: openAt, Close: closeAt}
	}
	return windows, nil
}

// expandWindow cuts one open window into consecutive 30-minute slots for a
// court. The last slot starts before the closing time (close 19:00 means the
// final slot runs 18:30-19:00).
func expandWindow(courtID uuid.UUID, day time.Time, w OpenWindow, priceCoins int) []Slot {
	var out []Slot
	for start := w.Open; start.Before(w.Close); start = start.Add(SlotDuration) {
		out = append(out, Slot{
			CourtID:     courtID,
			ServiceDate: day,
			StartAt:     start,
			EndAt:       start.Add(SlotDuration),
			Weekday:     int(day.Weekday()),
			PriceCoins:  priceCoins,
		})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func combineClock(day time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid HH:MM value %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}
