package api

import (
	"strings"
	"time"

	"dochazka-bot/internal/clock"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Status is the team overview for ?date=YYYY-MM-DD, today by default.
func (handler *Handler) Status(c *fiber.Ctx) error {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = clock.Today(handler.services.Clock)
	}

	statuses, err := handler.services.Status.Overview(c.UserContext(), date)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(fiber.Map{"date": date, "users": statuses})
}

func (handler *Handler) TeamMonth(c *fiber.Ctx) error {
	year, month, err := yearMonthParams(c)
	if err != nil {
		return err
	}

	summaries, err := handler.services.Monthly.TeamMonth(c.UserContext(), year, month)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(summaries)
}

func (handler *Handler) UserMonth(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	year, month, err := yearMonthParams(c)
	if err != nil {
		return err
	}

	user, err := handler.services.Users.GetByID(c.UserContext(), uint(id))
	if err != nil {
		return handler.respondError(c, err)
	}
	summary, err := handler.services.Monthly.MonthSummary(c.UserContext(), user, year, month)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(summary)
}

func (handler *Handler) UserLeave(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	year, err := c.ParamsInt("year")
	if err != nil || year < 2000 || year > 2100 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid year")
	}

	if _, err := handler.services.Users.GetByID(c.UserContext(), uint(id)); err != nil {
		return handler.respondError(c, err)
	}
	summary, err := handler.services.Leave.LeaveSummary(c.UserContext(), uint(id), year)
	if err != nil {
		return handler.respondError(c, err)
	}
	return c.JSON(summary)
}

func yearMonthParams(c *fiber.Ctx) (int, time.Month, error) {
	year, err := c.ParamsInt("year")
	if err != nil {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid year")
	}
	month, err := c.ParamsInt("month")
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid month")
	}
	return year, time.Month(month), nil
}
