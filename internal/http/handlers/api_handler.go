package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "applestore/internal/log"
	"applestore/internal/services"
	"applestore/internal/validate"
)

type APIHandler struct {
	Store *services.CatalogStore
}

// GET /api/v1/status
func (h *APIHandler) Status(c *fiber.Ctx) error {
	st := h.Store.Snapshot()
	return c.JSON(fiber.Map{
		"loading":          st.Loading,
		"isOffline":        st.Offline,
		"error":            st.Error,
		"products":         len(st.Products),
		"dollarRate":       st.Config.TotalRate(),
		"lastDollarUpdate": st.Config.LastDollarUpdate,
	})
}

// GET /api/v1/products
func (h *APIHandler) Products(c *fiber.Ctx) error {
	f, field, ok := filterFrom(c)
	if !ok {
		return badRequest(c, field)
	}
	return c.JSON(h.Store.Search(f))
}

// GET /api/v1/products/:id
func (h *APIHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	p, ok := h.Store.Product(id)
	if !ok {
		applog.Debug(c, "api.products.miss", map[string]any{"product_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

// GET /api/v1/config
func (h *APIHandler) Config(c *fiber.Ctx) error {
	return c.JSON(h.Store.Config())
}
