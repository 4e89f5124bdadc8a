package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// MigratePostgres creates or updates the parcels and paymentHistory tables.
func MigratePostgres(db *gorm.DB) error {
	if db == nil {
		return errors.New("migrate postgres: DB is nil")
	}

	if err := db.AutoMigrate(&parcelRow{}, &paymentRow{}); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}

	return nil
}
