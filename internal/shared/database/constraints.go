package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express.
func MigrateConstraints(db *gorm.DB) error {
	// Hard stop against duplicate slot generation for the same court and
	// start time, whatever the code path.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_slots_court_start
		ON slots (court_id, start_at);
	`).Error
	if err != nil {
		return err
	}

	// Sweep scans filter on elapsed windows joined with status.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_slots_end_at
		ON slots (end_at);
	`).Error
	if err != nil {
		return err
	}

	// Ledger sums run per user on every wallet mutation.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_coin_ledger_user_created
		ON coin_ledger (user_id, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
