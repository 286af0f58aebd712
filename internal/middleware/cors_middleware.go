package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/cors"
)

// CORSMiddleware runs rs/cors through the net/http adaptor. Requests without
// an Origin header skip it.
func (m *middleware) CORSMiddleware() fiber.Handler {
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: m.allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	})
	handler := adaptor.HTTPMiddleware(corsMiddleware.Handler)

	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderOrigin) == "" {
			return c.Next()
		}
		return handler(c)
	}
}
