package routes

import (
	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/handlers"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	App              *fiber.App
	AuthHandler      handlers.AuthHandler
	DonationHandler  handlers.DonationHandler
	RequestHandler   handlers.RequestHandler
	TaskHandler      handlers.TaskHandler
	AnalyticsHandler handlers.AnalyticsHandler
	Middleware       middleware.Middleware
	JWTService       jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Auth()
	c.Donations()
	c.Requests()
	c.Tasks()
	c.Analytics()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works. test"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) Auth() {
	auth := c.App.Group("/api/v1/auth")
	{
		auth.Post("/login", c.AuthHandler.Login)
		auth.Post("/logout", c.Middleware.AuthMiddleware(c.JWTService), c.AuthHandler.Logout)
		auth.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.AuthHandler.Me)
	}
}

func (c *Config) Donations() {
	donor := c.Middleware.RequireRole(domain.RoleDonor)

	donations := c.App.Group("/api/v1/donations", c.Middleware.AuthMiddleware(c.JWTService))
	donations.Post("", donor, c.DonationHandler.CreateDonation)
	donations.Get("", c.DonationHandler.GetActiveDonations)
	donations.Get("/mine", donor, c.DonationHandler.GetMyDonations)
	donations.Post("/sweep", c.Middleware.RequireRole(), c.DonationHandler.SweepExpiredDonations)
	donations.Get("/:id", c.DonationHandler.GetDonationByID)
	donations.Post("/:id/photo", donor, c.DonationHandler.UploadDonationPhoto)
	donations.Get("/:id/requests", donor, c.RequestHandler.GetDonationRequests)
}

func (c *Config) Requests() {
	recipient := c.Middleware.RequireRole(domain.RoleRecipient, domain.RoleNGO)
	donor := c.Middleware.RequireRole(domain.RoleDonor)

	requests := c.App.Group("/api/v1/requests", c.Middleware.AuthMiddleware(c.JWTService))
	requests.Post("", recipient, c.RequestHandler.SubmitRequest)
	requests.Get("/mine", recipient, c.RequestHandler.GetMyRequests)
	requests.Post("/:id/confirm", donor, c.RequestHandler.ConfirmRequest)
	requests.Post("/:id/cancel", c.RequestHandler.CancelRequest)
	requests.Post("/:id/fulfil", donor, c.RequestHandler.FulfilRequest)
}

func (c *Config) Tasks() {
	volunteer := c.Middleware.RequireRole(domain.RoleVolunteer)

	tasks := c.App.Group("/api/v1/tasks", c.Middleware.AuthMiddleware(c.JWTService), volunteer)
	tasks.Get("", c.TaskHandler.GetAvailableTasks)
	tasks.Post("/:id/accept", c.TaskHandler.AcceptTask)
	tasks.Post("/:id/complete", c.TaskHandler.CompleteTask)

	volunteers := c.App.Group("/api/v1/volunteers", c.Middleware.AuthMiddleware(c.JWTService), volunteer)
	volunteers.Get("/me", c.TaskHandler.GetMyProfile)
	volunteers.Post("/register", c.TaskHandler.RegisterVolunteer)
}

func (c *Config) Analytics() {
	analytics := c.App.Group("/api/v1/analytics", c.Middleware.AuthMiddleware(c.JWTService))
	analytics.Get("/donor", c.Middleware.RequireRole(domain.RoleDonor), c.AnalyticsHandler.GetDonorStatistics)
	analytics.Get("/categories", c.AnalyticsHandler.GetCategorySeries)
	analytics.Get("/heatmap", c.AnalyticsHandler.GetHeatPoints)
}
