package slots

import (
	"time"

	"courtly/internal/catalog"

	"github.com/google/uuid"
)

// SlotDuration is the fixed length of every bookable unit.
const SlotDuration = 30 * time.Minute

// Slot is one atomic bookable 30-minute unit for one court.
// Slots are pre-generated from business hours and never deleted;
// all lifecycle mutation happens on the companion SlotStatus row.
type Slot struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	CourtID     uuid.UUID `json:"court_id" gorm:"type:uuid;not null;index:idx_court_date;uniqueIndex:idx_court_start,priority:1"`
	ServiceDate time.Time `json:"service_date" gorm:"type:date;not null;index:idx_court_date"`
	StartAt     time.Time `json:"start_at" gorm:"not null;uniqueIndex:idx_court_start,priority:2"`
	EndAt       time.Time `json:"end_at" gorm:"not null"`
	Weekday     int       `json:"dow" gorm:"column:dow;not null"`
	PriceCoins  int       `json:"price_coins" gorm:"not null;default:100"`
	CreatedAt   time.Time `json:"created_at"`

	Court      *catalog.Court `json:"court,omitempty" gorm:"foreignKey:CourtID"`
	SlotStatus *SlotStatus    `json:"slot_status,omitempty" gorm:"foreignKey:SlotID"`
}

// SlotStatus is the current lifecycle state of a Slot, exactly one row per slot.
type SlotStatus struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	SlotID    uuid.UUID `json:"slot_id" gorm:"type:uuid;uniqueIndex;not null"`
	Status    Status    `json:"status" gorm:"type:varchar(20);not null;default:'available'"`
	UpdatedAt time.Time `json:"updated_at"`

	Slot *Slot `json:"slot,omitempty" gorm:"foreignKey:SlotID"`
}

func (Slot) TableName() string {
	return "slots"
}

func (SlotStatus) TableName() string {
	return "slot_statuses"
}

// CurrentStatus returns the slot's status, defaulting to available when the
// status row has not been loaded.
func (s *Slot) CurrentStatus() Status {
	if s.SlotStatus == nil {
		return StatusAvailable
	}
	return s.SlotStatus.Status
}
