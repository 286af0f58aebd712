package presenters

import (
	"errors"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/utils/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	Response struct {
		Status  bool        `json:"status"`
		Message string      `json:"message"`
		Data    interface{} `json:"data,omitempty"`
		Error   *ErrorBody  `json:"error,omitempty"`
	}

	ErrorBody struct {
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	}
)

func SuccessResponse(c *fiber.Ctx, data interface{}, code int, message string) error {
	return c.Status(code).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *fiber.Ctx, code int, message string, err error) error {
	body := &ErrorBody{}
	if err != nil {
		body.Message = err.Error()
	}

	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErr):
		body.Field = validationErr.Field
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		body.Field = fieldErrs[0].Field()
	}

	return c.Status(code).JSON(Response{
		Status:  false,
		Message: message,
		Error:   body,
	})
}

// StatusFor maps ledger errors onto HTTP status codes.
func StatusFor(err error) int {
	var validationErr *domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs),
		errors.Is(err, domain.ErrInvalidCoordinates),
		errors.Is(err, domain.ErrPhotoRequired),
		errors.Is(err, storage.ErrFileTypeNotAllowed):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrAlreadyAssigned),
		errors.Is(err, domain.ErrStaleDonation),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrNotAssignee):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrStorageFull):
		return fiber.StatusInsufficientStorage
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotAllowed),
		errors.Is(err, domain.ErrUnauthorizedDonationAccess),
		errors.Is(err, domain.ErrVolunteerNotRegistered):
		return fiber.StatusForbidden
	case errors.Is(err, storage.ErrStorageDisabled):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// Fail is ErrorResponse with the status picked by StatusFor.
func Fail(c *fiber.Ctx, message string, err error) error {
	return ErrorResponse(c, StatusFor(err), message, err)
}
