package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/agm-registration/internal/models"
)

// AutoMigrate creates or updates the schema for all workflow tables at
// startup. The shareholder registry itself is populated by an external
// loading process.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	if err := db.AutoMigrate(
		&models.Shareholder{},
		&models.RegisteredUser{},
		&models.VerificationToken{},
		&models.OutboxEmail{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return nil
}
