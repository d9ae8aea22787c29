package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Club is a venue operating one or more courts.
type Club struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string    `json:"name" gorm:"not null"`
	Timezone  string    `json:"tz" gorm:"column:tz;not null;default:'Asia/Bangkok'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Courts []Court `json:"courts,omitempty" gorm:"foreignKey:ClubID"`
}

// Court is a single bookable playing surface inside a club.
type Court struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	ClubID    uuid.UUID `json:"club_id" gorm:"type:uuid;index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Club *Club `json:"club,omitempty" gorm:"foreignKey:ClubID"`
}

// BusinessHour is the open window for a club on one weekday.
// Weekday follows time.Weekday (0=Sunday). OpenAt/CloseAt are "HH:MM"
// local to the club's timezone; slot generation consumes them once.
type BusinessHour struct {
	ID      uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	ClubID  uuid.UUID    `json:"club_id" gorm:"type:uuid;index;not null;uniqueIndex:idx_club_weekday,priority:1"`
	Weekday time.Weekday `json:"weekday" gorm:"not null;uniqueIndex:idx_club_weekday,priority:2"`
	OpenAt  string       `json:"open_at" gorm:"type:varchar(5);not null"`
	CloseAt string       `json:"close_at" gorm:"type:varchar(5);not null"`
}

func (Club) TableName() string {
	return "clubs"
}

func (Court) TableName() string {
	return "courts"
}

func (BusinessHour) TableName() string {
	return "business_hours"
}
