package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Use(recover.New())

	// registered ahead of the token group so probes need no token
	app.Get("/api/health", handler.Health)

	api := app.Group("/api", handler.TokenRequired)
	api.Get("/status", handler.Status)
	api.Get("/months/:year/:month", handler.TeamMonth)
	api.Get("/users/:id/months/:year/:month", handler.UserMonth)
	api.Get("/users/:id/leave/:year", handler.UserLeave)
}
