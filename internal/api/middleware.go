package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const tokenHeader = "X-API-Token"

// TokenRequired rejects requests without the configured static token.
func (handler *Handler) TokenRequired(c *fiber.Ctx) error {
	provided := c.Get(tokenHeader)
	if handler.token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(handler.token)) != 1 {
		handler.logger.WithField("path", c.Path()).Warn("API request with invalid token")
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.Next()
}
