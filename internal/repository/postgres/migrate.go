package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"fashionPulse/domain"
)

// Migrate creates or updates the schema for the event log and the experiment
// configuration.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Event{}, &experimentVariantRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
