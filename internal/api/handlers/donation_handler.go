package handlers

import (
	"strconv"
	"strings"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/pkg/donation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	DonationHandler interface {
		CreateDonation(c *fiber.Ctx) error
		GetActiveDonations(c *fiber.Ctx) error
		GetMyDonations(c *fiber.Ctx) error
		GetDonationByID(c *fiber.Ctx) error
		UploadDonationPhoto(c *fiber.Ctx) error
		SweepExpiredDonations(c *fiber.Ctx) error
	}

	donationHandler struct {
		donationService donation.DonationService
		validator       *validator.Validate
	}
)

func NewDonationHandler(donationService donation.DonationService, validator *validator.Validate) DonationHandler {
	return &donationHandler{
		donationService: donationService,
		validator:       validator,
	}
}

func (h *donationHandler) CreateDonation(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	req := new(domain.CreateDonationRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	// quantity, expiry and pickup window are reported before any tag failure
	if err := h.donationService.ValidateDonation(*req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedCreateDonation, err)
	}

	created, err := h.donationService.CreateDonation(c.Context(), *req, user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedCreateDonation, err)
	}

	return presenters.SuccessResponse(c, created, fiber.StatusCreated, domain.MessageSuccessCreateDonation)
}

func parseDonationFilter(c *fiber.Ctx) (domain.DonationFilter, error) {
	filter := domain.DonationFilter{
		Category: domain.DonationCategory(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("q")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, domain.NewValidationError("category", "unknown category")
	}

	if raw := c.Query("expiring_within"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return filter, domain.NewValidationError("expiring_within", "must be a positive duration such as 6h")
		}
		filter.ExpiringWithin = d
	}

	lat, lng := c.Query("lat"), c.Query("lng")
	if lat != "" || lng != "" {
		latitude, err := strconv.ParseFloat(lat, 64)
		if err != nil || latitude < -90 || latitude > 90 {
			return filter, domain.ErrInvalidCoordinates
		}
		longitude, err := strconv.ParseFloat(lng, 64)
		if err != nil || longitude < -180 || longitude > 180 {
			return filter, domain.ErrInvalidCoordinates
		}
		filter.Origin = &domain.GeoPoint{Latitude: latitude, Longitude: longitude}
	}

	if raw := c.Query("max_distance_km"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil || km <= 0 {
			return filter, domain.NewValidationError("max_distance_km", "must be a positive number")
		}
		filter.MaxDistanceKm = km
	}
	return filter, nil
}

func (h *donationHandler) GetActiveDonations(c *fiber.Ctx) error {
	filter, err := parseDonationFilter(c)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetDonations, err)
	}

	donations, err := h.donationService.ListActiveDonations(c.Context(), filter)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"donations": donations,
		"total":     len(donations),
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetMyDonations(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	donations, err := h.donationService.GetDonorDonations(c.Context(), user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetDonations, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"donations": donations,
		"total":     len(donations),
	}, fiber.StatusOK, domain.MessageSuccessGetDonations)
}

func (h *donationHandler) GetDonationByID(c *fiber.Ctx) error {
	found, err := h.donationService.GetDonationByID(c.Context(), c.Params("id"))
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetDonation, err)
	}

	return presenters.SuccessResponse(c, found, fiber.StatusOK, domain.MessageSuccessGetDonation)
}

func (h *donationHandler) UploadDonationPhoto(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	req := domain.UploadDonationPhotoRequest{DonationID: c.Params("id")}
	req.Photo, _ = c.FormFile("photo")
	if req.Photo == nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadPhoto, domain.ErrPhotoRequired)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUploadPhoto, err)
	}

	updated, err := h.donationService.UploadDonationPhoto(c.Context(), req, user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedUploadPhoto, err)
	}

	return presenters.SuccessResponse(c, updated, fiber.StatusOK, domain.MessageSuccessUploadPhoto)
}

func (h *donationHandler) SweepExpiredDonations(c *fiber.Ctx) error {
	swept, err := h.donationService.SweepExpiredDonations(c.Context())
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedSweepDonations, err)
	}

	return presenters.SuccessResponse(c, domain.SweepResult{Expired: swept}, fiber.StatusOK, domain.MessageSuccessSweepDonations)
}
