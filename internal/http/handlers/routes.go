package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	applog "applestore/internal/log"
)

// Register mounts every storefront, API and admin route on app.
func Register(app *fiber.App, d *Deps, adminToken string) {
	// Storefront
	app.Get("/", d.StorefrontHandler.Home)
	app.Get("/productos", limiter.New(limiter.Config{Max: 60, Expiration: time.Minute}), d.StorefrontHandler.Products)
	app.Get("/productos/:id", d.StorefrontHandler.Product)

	// Public API
	api := app.Group("/api/v1")
	api.Get("/status", d.APIHandler.Status)
	api.Get("/products", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|products"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.products.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}), d.APIHandler.Products)
	api.Get("/products/:id", d.APIHandler.Product)
	api.Get("/config", d.APIHandler.Config)

	// Admin
	admin := app.Group("/admin", RequireAdmin(adminToken))
	admin.Get("/dashboard", d.StorefrontHandler.Dashboard)

	a := admin.Group("/api")
	a.Post("/products", d.AdminHandler.CreateProduct)
	a.Put("/products/:id", d.AdminHandler.UpdateProduct)
	a.Delete("/products/:id", d.AdminHandler.DeleteProduct)
	a.Post("/products/:id/sale", d.AdminHandler.SetSale)
	a.Post("/products/:id/featured", d.AdminHandler.ToggleFeatured)
	a.Get("/products/:id/sheet", d.AdminHandler.ProductSheet)
	a.Put("/config", d.AdminHandler.UpdateConfig)
	a.Post("/config/rates", d.AdminHandler.RefreshRates)
	a.Post("/refresh", d.AdminHandler.Refresh)
	a.Post("/stock/check", d.AdminHandler.CheckStock)
}
