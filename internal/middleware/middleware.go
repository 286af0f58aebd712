package middleware

import (
	"Food-Rescue-Ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type (
	Middleware interface {
		AuthMiddleware(jwtService jwt.JWTService) fiber.Handler
		RequireRole(roles ...string) fiber.Handler
		CORSMiddleware() fiber.Handler
	}

	middleware struct {
		allowedOrigins []string
	}
)

// NewMiddleware allows every origin when allowedOrigins is empty.
func NewMiddleware(allowedOrigins ...string) Middleware {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &middleware{allowedOrigins: allowedOrigins}
}
