package main

import (
	"os"
	"os/signal"
	"syscall"

	"Food-Rescue-Ledger/cmd/config"
	migration "Food-Rescue-Ledger/cmd/database/migrate"
	"Food-Rescue-Ledger/internal/metrics"
	"Food-Rescue-Ledger/internal/utils"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()
	metrics.Register()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if db != nil {
		if err := migration.Migrate(db); err != nil {
			log.Fatalf("migrate database: %v", err)
		}
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
