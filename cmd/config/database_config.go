package config

import (
	"fmt"
	"strings"

	"Food-Rescue-Ledger/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// StoreDriver defaults to postgres when STORE_DRIVER is unset.
func StoreDriver() string {
	driver := strings.ToLower(strings.TrimSpace(utils.GetConfig("STORE_DRIVER")))
	if driver == "" {
		return DriverPostgres
	}
	return driver
}

// ConnectDB opens the database behind the record store. The memory driver
// needs none and gets a nil *gorm.DB.
func ConnectDB() (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver := StoreDriver(); driver {
	case DriverPostgres:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			utils.GetConfig("DB_HOST"),
			utils.GetConfig("DB_USER"),
			utils.GetConfig("DB_PASSWORD"),
			utils.GetConfig("DB_NAME"),
			utils.GetConfig("DB_PORT"),
		)
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		path := utils.GetConfig("SQLITE_PATH")
		if path == "" {
			path = "ledger.db"
		}
		dialector = sqlite.Open(path)
	case DriverMemory:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Errorf("Database connection failed: %v", err)
		return nil, err
	}
	return db, nil
}
