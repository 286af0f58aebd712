package domain

import (
	"errors"
	"fmt"
)

const (
	RoleDonor     = "donor"
	RoleRecipient = "recipient"
	RoleNGO       = "ngo"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageNoLongerAvailable    = "this item is no longer available"
	MessageCouldNotSave         = "couldn't save, try again"

	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")

	// Ledger errors. Every one of them is recoverable by the caller.
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateRequest  = errors.New("an active request already exists for this donation")
	ErrAlreadyAssigned   = errors.New("task was already taken")
	ErrStaleDonation     = errors.New("donation is no longer listed")
	ErrStorageFull       = errors.New("storage quota exceeded")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAssignee       = errors.New("task is assigned to another volunteer")
)

// ValidationError names the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type (
	// CurrentUser is what the identity collaborator hands to the ledger.
	CurrentUser struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Role        string `json:"role"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string      `json:"token"`
		User  CurrentUser `json:"user"`
	}
)

var (
	MessageSuccessLogin  = "login successful"
	MessageSuccessLogout = "logout successful"
	MessageSuccessMe     = "current user retrieved successfully"
	MessageFailedLogin   = "failed to login"

	ErrInvalidCredentials = errors.New("invalid email or password")
)
