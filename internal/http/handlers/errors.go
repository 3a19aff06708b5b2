package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/services"
)

// statusOf maps store errors onto HTTP statuses.
func statusOf(err error) int {
	switch {
	case domain.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrMissingOriginalPrice):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrOffline),
		errors.Is(err, services.ErrStoreClosed),
		errors.Is(err, services.ErrNoRateSource),
		domain.IsConnectivity(err):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// publicMessage never exposes backend details for 5xx responses.
func publicMessage(err error, status int) string {
	switch {
	case domain.IsValidation(err), errors.Is(err, domain.ErrMissingOriginalPrice):
		return err.Error()
	case status == fiber.StatusNotFound:
		return "product not found"
	case errors.Is(err, domain.ErrOffline):
		return domain.ErrOffline.Error()
	case status == fiber.StatusServiceUnavailable:
		return "store backend unavailable, retry later"
	}
	return "something went wrong"
}

// fail logs err under action and writes the JSON error body.
func fail(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	status := statusOf(err)
	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, action+".fail", err, fields)
	} else {
		applog.Warn(c, action+".reject", err, fields)
	}
	return c.JSON(fiber.Map{"error": publicMessage(err, status)})
}

func badRequest(c *fiber.Ctx, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid " + field})
}

// ErrorHandler is the app-wide fallback. It logs server errors and never
// echoes their text back.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Algo salió mal. Intentá de nuevo."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	c.Status(code)
	if strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/admin/api") {
		return c.JSON(fiber.Map{"error": msg})
	}
	if rerr := c.Render("notfound", page(fiber.Map{"Message": msg})); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}
