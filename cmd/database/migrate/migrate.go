package migration

import (
	"Food-Rescue-Ledger/entities"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.CollectionBlob{}); err != nil {
		log.Errorf("Error migrating collection blob table: %v", err)
		return err
	}

	log.Info("Database migration complete")
	return nil
}
