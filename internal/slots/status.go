package slots

// Status is the lifecycle state of a single 30-minute slot. One canonical
// vocabulary; legacy spellings are normalized at the input boundary only.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBooked      Status = "booked"
	StatusWalkin      Status = "walkin"
	StatusCheckin     Status = "checkin"
	StatusPlaying     Status = "playing"
	StatusEndgame     Status = "endgame"
	StatusExpired     Status = "expired"
	StatusNoShow      Status = "no_show"
	StatusMaintenance Status = "maintenance"
	StatusCancelled   Status = "cancelled"
)

// allowedTransitions is the full transition table. Manual manager moves and
// the time-based sweep both go through it; the cancellation protocol resets
// slots to available outside of it (release, not a forward transition).
var allowedTransitions = map[Status][]Status{
	StatusAvailable:   {StatusMaintenance, StatusWalkin, StatusBooked, StatusExpired},
	StatusBooked:      {StatusCheckin, StatusPlaying, StatusNoShow},
	StatusWalkin:      {StatusCheckin, StatusPlaying, StatusNoShow},
	StatusCheckin:     {StatusPlaying, StatusEndgame},
	StatusPlaying:     {StatusEndgame},
	StatusMaintenance: {StatusAvailable},
}

// legacyAliases maps status spellings seen in older clients onto the
// canonical vocabulary.
var legacyAliases = map[string]Status{
	"noshow":     StatusNoShow,
	"ended":      StatusEndgame,
	"checked_in": StatusCheckin,
	"upcoming":   StatusBooked,
}

// Normalize resolves raw client input to a canonical Status.
// Returns false for anything outside the vocabulary.
func Normalize(raw string) (Status, bool) {
	if s, ok := legacyAliases[raw]; ok {
		return s, true
	}
	s := Status(raw)
	if s.IsValid() {
		return s, true
	}
	return "", false
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusWalkin, StatusCheckin, StatusPlaying,
		StatusEndgame, StatusExpired, StatusNoShow, StatusMaintenance, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether s -> to is in the allowed-transition table.
func (s Status) CanTransition(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the slot has reached a final state for this
// booking cycle. Terminal per-slot states drive booking propagation.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusEndgame, StatusExpired, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// IsOccupied reports whether the slot is held by an active booking.
func (s Status) IsOccupied() bool {
	switch s {
	case StatusBooked, StatusWalkin, StatusCheckin, StatusPlaying:
		return true
	}
	return false
}
