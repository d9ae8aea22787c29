package sweep

import (
	"time"

	"courtly/internal/slots"
)

// Evaluate applies the time-based expiry rules to one slot and returns the
// status it should move to, or ok=false when the slot is left alone.
//
// Rules, first match wins:
//  1. available and the window ended: expired.
//  2. booked or walkin, fully elapsed without a check-in: no_show.
//  3. checkin or playing and the window ended: endgame.
func Evaluate(status slots.Status, startAt, endAt time.Time, now time.Time) (slots.Status, bool) {
	elapsed := endAt.Before(now)
	if !elapsed {
		return "", false
	}

	switch status {
	case slots.StatusAvailable:
		return slots.StatusExpired, true
	case slots.StatusBooked, slots.StatusWalkin:
		if startAt.Before(now) {
			return slots.StatusNoShow, true
		}
	case slots.StatusCheckin, slots.StatusPlaying:
		return slots.StatusEndgame, true
	}
	return "", false
}
