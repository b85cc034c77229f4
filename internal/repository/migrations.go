package repository

import (
	"github.com/iqueue/staffing/internal/models"
	"gorm.io/gorm"
)

// Models returns all models that need migration
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Shift{},
		&models.ShiftEvent{},
	}
}

// Migrate runs AutoMigrate and then the custom statements.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// customMigrations holds schema changes AutoMigrate can't express.
var customMigrations = []string{
	`ALTER TABLE users DROP CONSTRAINT IF EXISTS chk_users_shifts_worked`,
	`ALTER TABLE users ADD CONSTRAINT chk_users_shifts_worked CHECK (shifts_worked >= 0)`,
	// picker is set exactly when the shift is no longer Posted
	`ALTER TABLE shifts DROP CONSTRAINT IF EXISTS chk_shifts_picker_status`,
	`ALTER TABLE shifts ADD CONSTRAINT chk_shifts_picker_status CHECK (
		(status = 'Posted' AND picker_id IS NULL) OR
		(status IN ('Requested', 'Approved') AND picker_id IS NOT NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_open
		ON shifts(role, date, start_time)
		WHERE status = 'Posted'`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_pending
		ON shifts(posted_by_id, date)
		WHERE status = 'Requested'`,
	`CREATE INDEX IF NOT EXISTS idx_shift_events_shift_created
		ON shift_events(shift_id, created_at)`,
}

func runCustomMigrations(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range customMigrations {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
