package handlers

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "applestore/internal/log"
)

const adminCookie = "admin_token"

// RequireAdmin guards the admin surface with a shared token, read from a
// bearer header, the X-Admin-Token header or the admin cookie. An empty
// token leaves the surface open.
func RequireAdmin(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got := c.Get("X-Admin-Token")
		if got == "" {
			got = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}
		if got == "" {
			got = c.Cookies(adminCookie)
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			applog.Security(c, "access.denied.admin", map[string]any{"presented": got != ""})
			if strings.HasPrefix(c.Path(), "/admin/api") {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
			}
			return c.Status(fiber.StatusForbidden).Render("notfound", page(fiber.Map{"Message": "Acceso denegado"}))
		}
		return c.Next()
	}
}
