package bookings

// Status is the lifecycle state of a booking. Slot statuses move per slot;
// the booking follows its chronologically last slot.
type Status string

const (
	// StatusUpcoming is a paid online booking that has not started.
	StatusUpcoming Status = "upcoming"
	// StatusWalkin is a manager-created booking for a customer at the desk.
	StatusWalkin Status = "walkin"
	// StatusCheckin means the customer arrived and play is underway.
	StatusCheckin Status = "checkin"
	// StatusEndgame means the booked time has fully elapsed after check-in.
	StatusEndgame Status = "endgame"
	// StatusCancelled is a booking voided inside the cancellation window.
	StatusCancelled Status = "cancelled"
	// StatusNoShow means the booked time elapsed without a check-in.
	StatusNoShow Status = "no_show"
)

var allowedTransitions = map[Status][]Status{
	StatusUpcoming: {StatusCheckin, StatusCancelled, StatusNoShow},
	StatusWalkin:   {StatusCheckin, StatusCancelled, StatusNoShow},
	StatusCheckin:  {StatusEndgame},
}

// IsValid checks whether the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusWalkin, StatusCheckin, StatusEndgame, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether moving to target is allowed.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the booking can never change again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusEndgame, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether the booking still holds its slots.
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

func (s Status) String() string {
	return string(s)
}
