package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

var postgresOverlapGuard = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (
				room_id WITH =,
				tstzrange(check_in_date, check_out_date, '[)') WITH &&
			) WHERE (status <> 'cancelled');
	END IF;
END $$`,
}

// Migrate creates the rooms and bookings tables. On Postgres it also installs an
// exclusion constraint so overlapping live bookings for one room cannot be stored.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&roomModel{}, &bookingModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, stmt := range postgresOverlapGuard {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("install overlap constraint: %w", err)
		}
	}
	return nil
}
