package handlers

import (
	"context"
	"errors"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/internal/utils/mailing"
	"Food-Rescue-Ledger/pkg/account"
	"Food-Rescue-Ledger/pkg/donation"
	"Food-Rescue-Ledger/pkg/request"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type (
	RequestHandler interface {
		SubmitRequest(c *fiber.Ctx) error
		GetMyRequests(c *fiber.Ctx) error
		GetDonationRequests(c *fiber.Ctx) error
		ConfirmRequest(c *fiber.Ctx) error
		CancelRequest(c *fiber.Ctx) error
		FulfilRequest(c *fiber.Ctx) error
	}

	requestHandler struct {
		requestService  request.RequestService
		donationService donation.DonationService
		accountService  account.AccountService
		notifier        mailing.Notifier
		validator       *validator.Validate
	}
)

func NewRequestHandler(
	requestService request.RequestService,
	donationService donation.DonationService,
	accountService account.AccountService,
	notifier mailing.Notifier,
	validator *validator.Validate,
) RequestHandler {
	return &requestHandler{
		requestService:  requestService,
		donationService: donationService,
		accountService:  accountService,
		notifier:        notifier,
		validator:       validator,
	}
}

func (h *requestHandler) SubmitRequest(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	req := new(domain.SubmitRequestRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSubmitRequest, err)
	}

	created, err := h.requestService.SubmitRequest(c.Context(), *req, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateRequest):
			return presenters.Fail(c, domain.MessageAlreadyRequested, err)
		case errors.Is(err, domain.ErrNotFound):
			return presenters.Fail(c, domain.MessageNoLongerAvailable, err)
		}
		return presenters.Fail(c, domain.MessageFailedSubmitRequest, err)
	}

	return presenters.SuccessResponse(c, created, fiber.StatusCreated, domain.MessageSuccessSubmitRequest)
}

func (h *requestHandler) GetMyRequests(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	requests, err := h.requestService.GetRecipientRequests(c.Context(), user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetRequests, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"requests": requests,
		"total":    len(requests),
	}, fiber.StatusOK, domain.MessageSuccessGetRequests)
}

// ownDonation fails unless the current user listed the donation.
func (h *requestHandler) ownDonation(ctx context.Context, user domain.CurrentUser, donationID string) (*domain.DonationListing, error) {
	listing, err := h.donationService.GetDonationByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if listing.DonorID != user.ID && user.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorizedDonationAccess
	}
	return listing, nil
}

func (h *requestHandler) GetDonationRequests(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	donationID := c.Params("id")

	if _, err := h.ownDonation(c.Context(), user, donationID); err != nil {
		return presenters.Fail(c, domain.MessageFailedGetRequests, err)
	}

	requests, err := h.requestService.GetDonationRequests(c.Context(), donationID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetRequests, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"requests": requests,
		"total":    len(requests),
	}, fiber.StatusOK, domain.MessageSuccessGetRequests)
}

// loadForDonor returns the request when the current user owns its donation.
func (h *requestHandler) loadForDonor(c *fiber.Ctx) (*domain.FoodRequest, *domain.DonationListing, error) {
	user := middleware.CurrentUser(c)

	fr, err := h.requestService.GetRequestByID(c.Context(), c.Params("id"))
	if err != nil {
		return nil, nil, err
	}
	listing, err := h.ownDonation(c.Context(), user, fr.DonationID)
	if err != nil {
		return nil, nil, err
	}
	return fr, listing, nil
}

func (h *requestHandler) ConfirmRequest(c *fiber.Ctx) error {
	fr, listing, err := h.loadForDonor(c)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedConfirmRequest, err)
	}

	confirmed, err := h.requestService.ConfirmRequest(c.Context(), fr.ID)
	if err != nil {
		if errors.Is(err, domain.ErrStaleDonation) {
			return presenters.Fail(c, domain.MessageNoLongerAvailable, err)
		}
		return presenters.Fail(c, domain.MessageFailedConfirmRequest, err)
	}

	h.notifyConfirmed(*confirmed, *listing)
	return presenters.SuccessResponse(c, confirmed, fiber.StatusOK, domain.MessageSuccessConfirmRequest)
}

// notifyConfirmed mails the recipient in the background. The confirmation is
// already committed, so a failed mail is only logged.
func (h *requestHandler) notifyConfirmed(fr domain.FoodRequest, listing domain.DonationListing) {
	if h.notifier == nil || h.accountService == nil {
		return
	}
	email, ok := h.accountService.GetEmail(fr.RecipientID)
	if !ok {
		log.Warnw("no email for recipient, skipping confirmation mail", "recipient_id", fr.RecipientID)
		return
	}

	go func() {
		if err := h.notifier.NotifyRequestConfirmed(email, fr, listing); err != nil {
			log.Errorf("send confirmation mail for request %s: %v", fr.ID, err)
		}
	}()
}

func (h *requestHandler) CancelRequest(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	fr, err := h.requestService.GetRequestByID(c.Context(), c.Params("id"))
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedCancelRequest, err)
	}
	if fr.RecipientID != user.ID {
		if _, err := h.ownDonation(c.Context(), user, fr.DonationID); err != nil {
			return presenters.Fail(c, domain.MessageFailedCancelRequest, err)
		}
	}

	cancelled, err := h.requestService.CancelRequest(c.Context(), fr.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedCancelRequest, err)
	}

	return presenters.SuccessResponse(c, cancelled, fiber.StatusOK, domain.MessageSuccessCancelRequest)
}

func (h *requestHandler) FulfilRequest(c *fiber.Ctx) error {
	fr, _, err := h.loadForDonor(c)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedFulfilRequest, err)
	}

	fulfilled, err := h.requestService.FulfilRequest(c.Context(), fr.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedFulfilRequest, err)
	}

	return presenters.SuccessResponse(c, fulfilled, fiber.StatusOK, domain.MessageSuccessFulfilRequest)
}
