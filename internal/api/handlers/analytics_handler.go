package handlers

import (
	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/pkg/analytics"

	"github.com/gofiber/fiber/v2"
)

type (
	AnalyticsHandler interface {
		GetDonorStatistics(c *fiber.Ctx) error
		GetCategorySeries(c *fiber.Ctx) error
		GetHeatPoints(c *fiber.Ctx) error
	}

	analyticsHandler struct {
		analyticsService analytics.AnalyticsService
	}
)

func NewAnalyticsHandler(analyticsService analytics.AnalyticsService) AnalyticsHandler {
	return &analyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *analyticsHandler) GetDonorStatistics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	stats, err := h.analyticsService.GetDonorStatistics(c.Context(), user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetDonorStatistics, err)
	}

	return presenters.SuccessResponse(c, stats, fiber.StatusOK, domain.MessageSuccessGetDonorStatistics)
}

func (h *analyticsHandler) GetCategorySeries(c *fiber.Ctx) error {
	series, err := h.analyticsService.GetCategorySeries(c.Context())
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetCategorySeries, err)
	}

	return presenters.SuccessResponse(c, series, fiber.StatusOK, domain.MessageSuccessGetCategorySeries)
}

func (h *analyticsHandler) GetHeatPoints(c *fiber.Ctx) error {
	points, err := h.analyticsService.GetHeatPoints(c.Context())
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetHeatPoints, err)
	}

	return presenters.SuccessResponse(c, points, fiber.StatusOK, domain.MessageSuccessGetHeatPoints)
}
