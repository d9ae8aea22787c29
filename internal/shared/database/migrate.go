package database

import (
	"courtly/internal/bookings"
	"courtly/internal/catalog"
	"courtly/internal/slots"
	"courtly/internal/users"
	"courtly/internal/wallet"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&catalog.Club{},
		&catalog.Court{},
		&catalog.BusinessHour{},
		&slots.Slot{},
		&slots.SlotStatus{},
		&bookings.Booking{},
		&bookings.BookingSlot{},
		&wallet.LedgerEntry{},
		&wallet.Wallet{},
		&wallet.TopupRequest{},
	)
}
