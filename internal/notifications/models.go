package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a booking lifecycle event.
type EventType string

const (
	EventBookingConfirmed EventType = "BOOKING_CONFIRMED"
	EventBookingCancelled EventType = "BOOKING_CANCELLED"
)

// BookingEvent is the wire payload published for each booking lifecycle
// change. Partitioned by booking number so events for one booking stay
// ordered.
type BookingEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          EventType `json:"type"`
	BookingNo     string    `json:"booking_no"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	ClubID        uuid.UUID `json:"club_id"`
	BookingDate   string    `json:"booking_date"`
	TotalCost     int       `json:"total_cost"`
	RefundedCoins int       `json:"refunded_coins,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ToJSON serializes the event for the wire.
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON deserializes an event from the wire.
func FromJSON(data []byte) (*BookingEvent, error) {
	var e BookingEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetPartitionKey keeps all events for one booking on one partition.
func (e *BookingEvent) GetPartitionKey() string {
	return e.BookingNo
}
