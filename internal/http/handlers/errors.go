package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shelfkeeper/internal/advisory"
	applog "shelfkeeper/internal/log"
	"shelfkeeper/internal/repos"
	"shelfkeeper/internal/services"
)

const msgGeneric = "Something went wrong. Please try again."

// statusFor maps service errors to a status and a message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, repos.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "authentication required"
	case errors.Is(err, services.ErrBatchNotFound):
		return fiber.StatusNotFound, "batch not found"
	case errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict, "only active batches can change status"
	case errors.Is(err, services.ErrInvalidBatch),
		errors.Is(err, services.ErrInvalidProfile),
		errors.Is(err, advisory.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, advisory.ErrNotConfigured):
		return fiber.StatusServiceUnavailable, "image analysis is not configured"
	case errors.Is(err, repos.ErrBackend):
		return fiber.StatusBadGateway, "Could not reach the store. Please try again."
	}
	return fiber.StatusInternalServerError, msgGeneric
}

// apiError logs err under action and writes the mapped JSON error.
func apiError(c *fiber.Ctx, action string, err error) error {
	status, msg := statusFor(err)
	switch {
	case status >= 500:
		applog.Error(c, action, err, nil)
	case status == fiber.StatusUnauthorized:
		applog.Security(c, action, map[string]any{"reason": msg})
	default:
		applog.Info(c, action, map[string]any{"reason": msg})
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback. It never shows internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})

	msg := msgGeneric
	if code < 500 && fe != nil {
		msg = fe.Message
	}
	if isAPI(c) {
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}
