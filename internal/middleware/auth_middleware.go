package middleware

import (
	"slices"
	"strings"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func (m *middleware) AuthMiddleware(jwtService jwt.JWTService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedGetToken, domain.ErrTokenNotFound)
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, domain.ErrTokenInvalid)
		}

		user, err := jwtService.GetUserByToken(token)
		if err != nil {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageFailedTokenInvalid, err)
		}

		c.Locals("user_id", user.ID)
		c.Locals("role", user.Role)
		c.Locals("display_name", user.DisplayName)
		return c.Next()
	}
}

// RequireRole must run after AuthMiddleware. Admins pass every check.
func (m *middleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role == domain.RoleAdmin || slices.Contains(roles, role) {
			return c.Next()
		}
		return presenters.ErrorResponse(c, fiber.StatusForbidden, domain.MesaageUserNotAllowed, domain.ErrUserNotAllowed)
	}
}

// CurrentUser reads what AuthMiddleware stored on the context.
func CurrentUser(c *fiber.Ctx) domain.CurrentUser {
	id, _ := c.Locals("user_id").(string)
	role, _ := c.Locals("role").(string)
	name, _ := c.Locals("display_name").(string)
	return domain.CurrentUser{ID: id, DisplayName: name, Role: role}
}
