package handlers

import (
	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/pkg/account"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	AuthHandler interface {
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
	}

	authHandler struct {
		accountService account.AccountService
		validator      *validator.Validate
	}
)

func NewAuthHandler(accountService account.AccountService, validator *validator.Validate) AuthHandler {
	return &authHandler{
		accountService: accountService,
		validator:      validator,
	}
}

func (h *authHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedLogin, err)
	}

	res, err := h.accountService.Login(c.Context(), *req)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedLogin, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessLogin)
}

// Logout is stateless; the client drops its token.
func (h *authHandler) Logout(c *fiber.Ctx) error {
	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessLogout)
}

func (h *authHandler) Me(c *fiber.Ctx) error {
	return presenters.SuccessResponse(c, middleware.CurrentUser(c), fiber.StatusOK, domain.MessageSuccessMe)
}
