package bookings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound                 = errors.New("booking not found")
	ErrNoSlots                  = errors.New("at least one slot is required")
	ErrAlreadyCancelled         = errors.New("booking already cancelled")
	ErrInvalidState             = errors.New("booking state does not allow this operation")
	ErrCancellationWindowClosed = errors.New("cancellation window has closed")
)

// SlotUnavailableError reports exactly which requested slots were not
// available at allocation time.
type SlotUnavailableError struct {
	SlotIDs []uuid.UUID
}

func (e *SlotUnavailableError) Error() string {
	ids := make([]string, 0, len(e.SlotIDs))
	for _, id := range e.SlotIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("slots unavailable: %s", strings.Join(ids, ", "))
}
