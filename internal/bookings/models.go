package bookings

import (
	"time"

	"courtly/internal/slots"

	"github.com/google/uuid"
)

// Method distinguishes how the booking was taken.
type Method string

const (
	MethodOnline Method = "online"
	MethodWalkin Method = "walkin"
)

// PaymentMethod records how the booking was paid.
type PaymentMethod string

const (
	PaymentCoins PaymentMethod = "coins"
	// PaymentFree marks walk-ins, which never charge the ledger.
	PaymentFree PaymentMethod = "free"
)

// Booking groups one or more consecutive slots taken together. UserID is nil
// for walk-ins; the customer fields are a snapshot taken at booking time.
type Booking struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	BookingNo     string        `json:"booking_no" gorm:"type:varchar(16);uniqueIndex;not null"`
	UserID        *uuid.UUID    `json:"user_id,omitempty" gorm:"type:uuid;index"`
	CustomerName  string        `json:"customer_name" gorm:"type:varchar(200)"`
	CustomerEmail string        `json:"customer_email" gorm:"type:varchar(255)"`
	ClubID        uuid.UUID     `json:"club_id" gorm:"type:uuid;not null;index"`
	Status        Status        `json:"status" gorm:"type:varchar(20);not null;index"`
	BookingDate   time.Time     `json:"booking_date" gorm:"type:date;not null;index"`
	TotalCost     int           `json:"total_cost" gorm:"not null"`
	Method        Method        `json:"booking_method" gorm:"type:varchar(20);not null"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(20);not null"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Slots []BookingSlot `json:"slots,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingSlot links a booking to one slot, with the price frozen at booking
// time so later repricing never changes history.
type BookingSlot struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	SlotID     uuid.UUID `json:"slot_id" gorm:"type:uuid;not null;index"`
	PriceCoins int       `json:"price_coins" gorm:"not null"`

	Slot *slots.Slot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
}

func (BookingSlot) TableName() string {
	return "booking_slots"
}

// FirstSlotStart returns the earliest slot start, or zero when slots are not
// loaded. Slots are always loaded ordered by start time.
func (b *Booking) FirstSlotStart() time.Time {
	if len(b.Slots) == 0 || b.Slots[0].Slot == nil {
		return time.Time{}
	}
	return b.Slots[0].Slot.StartAt
}

// LastSlotEnd returns the latest slot end, or zero when slots are not loaded.
func (b *Booking) LastSlotEnd() time.Time {
	if len(b.Slots) == 0 {
		return time.Time{}
	}
	last := b.Slots[len(b.Slots)-1]
	if last.Slot == nil {
		return time.Time{}
	}
	return last.Slot.EndAt
}

func linkedSlotIDs(b *Booking) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Slots))
	for _, link := range b.Slots {
		ids = append(ids, link.SlotID)
	}
	return ids
}
