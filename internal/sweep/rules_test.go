package sweep

import (
	"testing"
	"time"

	"courtly/internal/slots"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name    string
		status  slots.Status
		startAt time.Time
		endAt   time.Time
		want    slots.Status
		ok      bool
	}{
		{"available elapsed expires", slots.StatusAvailable, past.Add(-30 * time.Minute), past, slots.StatusExpired, true},
		{"available still running", slots.StatusAvailable, past, future, "", false},
		{"booked elapsed no-shows", slots.StatusBooked, past.Add(-30 * time.Minute), past, slots.StatusNoShow, true},
		{"walkin elapsed no-shows", slots.StatusWalkin, past.Add(-30 * time.Minute), past, slots.StatusNoShow, true},
		{"booked still running", slots.StatusBooked, past, future, "", false},
		{"checkin elapsed ends", slots.StatusCheckin, past.Add(-30 * time.Minute), past, slots.StatusEndgame, true},
		{"playing elapsed ends", slots.StatusPlaying, past.Add(-30 * time.Minute), past, slots.StatusEndgame, true},
		{"expired left alone", slots.StatusExpired, past.Add(-30 * time.Minute), past, "", false},
		{"endgame left alone", slots.StatusEndgame, past.Add(-30 * time.Minute), past, "", false},
		{"maintenance left alone", slots.StatusMaintenance, past.Add(-30 * time.Minute), past, "", false},
		{"cancelled left alone", slots.StatusCancelled, past.Add(-30 * time.Minute), past, "", false},
		{"exact end is not elapsed", slots.StatusAvailable, now.Add(-30 * time.Minute), now, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Evaluate(tt.status, tt.startAt, tt.endAt, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	start := now.Add(-2 * time.Hour)
	end := now.Add(-time.Hour)

	target, ok := Evaluate(slots.StatusBooked, start, end, now)
	assert.True(t, ok)
	assert.Equal(t, slots.StatusNoShow, target)

	// Re-evaluating the slot after it moved yields no further change.
	_, ok = Evaluate(target, start, end, now)
	assert.False(t, ok)
}
