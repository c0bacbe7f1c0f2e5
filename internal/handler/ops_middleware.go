package handler

import (
	"crypto/subtle"
	"strings"

	"github.com/foliocms/folio/backend/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// BearerTokenMiddleware guards an operational endpoint such as /metrics with
// a static token. An empty token disables the endpoint.
func BearerTokenMiddleware(expectedToken string) fiber.Handler {
	expected := []byte(strings.TrimSpace(expectedToken))

	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return response.Forbidden(c, "endpoint is disabled")
		}

		scheme, provided, ok := strings.Cut(strings.TrimSpace(c.Get("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return response.Unauthorized(c, "missing or invalid authorization header")
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(provided)), expected) != 1 {
			return response.Unauthorized(c, "invalid authorization token")
		}

		return c.Next()
	}
}
