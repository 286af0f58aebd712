package config

import (
	"context"
	"os"
	"time"

	"Food-Rescue-Ledger/internal/api/handlers"
	"Food-Rescue-Ledger/internal/api/routes"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/internal/utils"
	"Food-Rescue-Ledger/internal/utils/mailing"
	"Food-Rescue-Ledger/internal/utils/storage"
	"Food-Rescue-Ledger/internal/utils/txn"
	"Food-Rescue-Ledger/pkg/account"
	"Food-Rescue-Ledger/pkg/analytics"
	"Food-Rescue-Ledger/pkg/donation"
	"Food-Rescue-Ledger/pkg/jwt"
	"Food-Rescue-Ledger/pkg/request"
	"Food-Rescue-Ledger/pkg/store"
	"Food-Rescue-Ledger/pkg/task"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

// NewMedium picks the gorm medium when a database is open and the in-process
// one otherwise.
func NewMedium(db *gorm.DB) store.Medium {
	quota := int(utils.GetConfigInt64("STORE_QUOTA_BYTES", store.DefaultQuotaBytes))
	if db == nil {
		log.Warn("no database configured, records live in memory only")
		return store.NewMemoryMedium(quota)
	}
	return store.NewGormMedium(db, quota)
}

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	notifier := mailing.NewNotifier(mailing.LoadMailConfig())
	serial := &txn.Serial{}
	recordStore := store.NewRecordStore(NewMedium(db))

	// Repository
	donationRepository := donation.NewDonationRepository(recordStore)
	requestRepository := request.NewRequestRepository(recordStore)
	taskRepository := task.NewTaskRepository(recordStore)

	// Service
	jwtService, err := jwt.NewJWTService()
	if err != nil {
		return nil, err
	}
	accountService := account.NewAccountService(utils.GetAccounts(), jwtService)
	donationService := donation.NewDonationService(donationRepository, s3, serial, nil)
	requestService := request.NewRequestService(requestRepository, donationRepository, serial, nil)
	taskService := task.NewTaskService(taskRepository, serial, nil)
	analyticsService := analytics.NewAnalyticsService(donationRepository, serial, nil)

	if path := utils.GetConfig("TASK_CATALOG_PATH"); path != "" {
		catalog, err := task.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		if _, err := taskService.SeedTasks(context.Background(), catalog); err != nil {
			return nil, err
		}
	}

	// Handler
	authHandler := handlers.NewAuthHandler(accountService, validator)
	donationHandler := handlers.NewDonationHandler(donationService, validator)
	requestHandler := handlers.NewRequestHandler(requestService, donationService, accountService, notifier, validator)
	taskHandler := handlers.NewTaskHandler(taskService, validator)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// routes
	routesConfig := routes.Config{
		App:              app,
		AuthHandler:      authHandler,
		DonationHandler:  donationHandler,
		RequestHandler:   requestHandler,
		TaskHandler:      taskHandler,
		AnalyticsHandler: analyticsHandler,
		Middleware:       middlewares,
		JWTService:       jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
