package api

import (
	"errors"

	"dochazka-bot/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Handler serves the read-only reporting API.
type Handler struct {
	services *service.Services
	token    string
	logger   *logrus.Logger
}

func NewHandler(services *service.Services, token string, logger *logrus.Logger) *Handler {
	return &Handler{
		services: services,
		token:    token,
		logger:   logger,
	}
}

// NewApp builds the fiber app with middleware and routes registered.
func NewApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Dochazka",
		DisableStartupMessage: true,
		ErrorHandler:          handler.handleError,
	})
	RegisterRoutes(app, handler)
	return app
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondError maps engine errors onto HTTP statuses. Storage failures are logged and hidden.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		return apiError(c, fiber.StatusForbidden, "forbidden")
	case service.IsUserError(err):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	handler.logger.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).WithError(err).Error("API request failed")
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}

func (handler *Handler) handleError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError(c, fiberErr.Code, fiberErr.Message)
	}
	return handler.respondError(c, err)
}
