package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/db/models"
)

// Migrate creates or updates the canonical capability tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Int("tables", len(models.All())).Msg("capability tables migrated")

	return nil
}
