package slots

import (
	"testing"
	"time"

	"courtly/internal/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildWindows(t *testing.T) {
	hours := []catalog.BusinessHour{
		{Weekday: time.Monday, OpenAt: "09:00", CloseAt: "21:00"},
		{Weekday: time.Tuesday, OpenAt: "09:00", CloseAt: "19:00"},
	}

	// 2026-08-31 is a Monday.
	from := day(2026, time.August, 31)
	to := day(2026, time.September, 3) // Monday through Thursday

	windows, err := buildWindows(hours, from, to, time.UTC)
	require.NoError(t, err)

	// Wednesday and Thursday have no hours, so only two open days.
	require.Len(t, windows, 2)

	mon := windows[day(2026, time.August, 31)]
	assert.Equal(t, 9, mon.Open.Hour())
	assert.Equal(t, 21, mon.Close.Hour())

	tue := windows[day(2026, time.September, 1)]
	assert.Equal(t, 19, tue.Close.Hour())
}

func TestBuildWindowsRejectsInvertedHours(t *testing.T) {
	hours := []catalog.BusinessHour{
		{Weekday: time.Monday, OpenAt: "21:00", CloseAt: "09:00"},
	}
	_, err := buildWindows(hours, day(2026, time.August, 31), day(2026, time.August, 31), time.UTC)
	assert.Error(t, err)
}

func TestBuildWindowsRejectsBadClock(t *testing.T) {
	hours := []catalog.BusinessHour{
		{Weekday: time.Monday, OpenAt: "9am", CloseAt: "21:00"},
	}
	_, err := buildWindows(hours, day(2026, time.August, 31), day(2026, time.August, 31), time.UTC)
	assert.Error(t, err)
}

func TestExpandWindow(t *testing.T) {
	courtID := uuid.New()
	d := day(2026, time.August, 31)
	w := OpenWindow{
		Open:  time.Date(2026, time.August, 31, 17, 0, 0, 0, time.UTC),
		Close: time.Date(2026, time.August, 31, 19, 0, 0, 0, time.UTC),
	}

	out := expandWindow(courtID, d, w, 100)
	require.Len(t, out, 4)

	first := out[0]
	assert.Equal(t, courtID, first.CourtID)
	assert.Equal(t, d, first.ServiceDate)
	assert.Equal(t, 17, first.StartAt.Hour())
	assert.Equal(t, 0, first.StartAt.Minute())
	assert.Equal(t, 100, first.PriceCoins)
	assert.Equal(t, SlotDuration, first.EndAt.Sub(first.StartAt))

	// The final slot starts 30 minutes before close and ends exactly at it.
	last := out[len(out)-1]
	assert.Equal(t, 18, last.StartAt.Hour())
	assert.Equal(t, 30, last.StartAt.Minute())
	assert.True(t, last.EndAt.Equal(w.Close))

	// Consecutive slots tile the window with no gaps.
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i].StartAt.Equal(out[i-1].EndAt))
	}
}

func TestExpandWindowUnevenClose(t *testing.T) {
	// A 45-minute window yields two slots; the second one crosses the close.
	w := OpenWindow{
		Open:  time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC),
		Close: time.Date(2026, time.August, 31, 9, 45, 0, 0, time.UTC),
	}
	out := expandWindow(uuid.New(), day(2026, time.August, 31), w, 50)
	require.Len(t, out, 2)
	assert.Equal(t, 30, out[1].StartAt.Minute())
}
