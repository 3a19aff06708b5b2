package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/notify"
	"applestore/internal/services"
	"applestore/internal/validate"
)

type AdminHandler struct {
	Store   *services.CatalogStore
	Monitor *services.LowStockMonitor
}

type saleRequest struct {
	OnSale             bool    `json:"onSale"`
	DiscountPercentage float64 `json:"discountPercentage"`
}

// POST /admin/api/products
func (h *AdminHandler) CreateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body")
	}
	out, err := h.Store.AddProduct(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.products.create", err, map[string]any{"name": p.Name})
	}
	applog.Audit(c, "admin.products.create", map[string]any{"product_id": out.ID, "name": out.Name})
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PUT /admin/api/products/:id
// Fields missing from the body keep their current values.
func (h *AdminHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	p, _ := h.Store.Product(id)
	if err := c.BodyParser(&p); err != nil {
		return badRequest(c, "body")
	}
	p.ID = id
	out, err := h.Store.UpdateProduct(c.UserContext(), p)
	if err != nil {
		return fail(c, "admin.products.update", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.update", map[string]any{"product_id": id})
	return c.JSON(out)
}

// DELETE /admin/api/products/:id
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	if err := h.Store.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, "admin.products.delete", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /admin/api/products/:id/sale
func (h *AdminHandler) SetSale(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	var req saleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body")
	}
	out, err := h.Store.SetProductOnSale(c.UserContext(), id, req.OnSale, req.DiscountPercentage)
	if err != nil {
		return fail(c, "admin.products.sale", err, map[string]any{"product_id": id, "on_sale": req.OnSale})
	}
	applog.Audit(c, "admin.products.sale", map[string]any{
		"product_id": id, "on_sale": out.IsOnSale, "discount": req.DiscountPercentage,
	})
	return c.JSON(out)
}

// POST /admin/api/products/:id/featured
func (h *AdminHandler) ToggleFeatured(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	out, err := h.Store.ToggleFeatured(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.products.featured", err, map[string]any{"product_id": id})
	}
	applog.Audit(c, "admin.products.featured", map[string]any{"product_id": id, "featured": out.IsFeatured})
	return c.JSON(out)
}

// GET /admin/api/products/:id/sheet?note=
func (h *AdminHandler) ProductSheet(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "id")
	}
	p, ok := h.Store.Product(id)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	note := c.Query("note")
	if r := []rune(note); len(r) > 500 {
		note = string(r[:500])
	}
	text := notify.ProductSheet(p, note)
	phone := strings.TrimSpace(c.Query("phone"))
	if phone != "" {
		if _, ok := validate.Phone(phone); !ok {
			return badRequest(c, "phone")
		}
	}
	return c.JSON(fiber.Map{"text": text, "link": notify.InquiryLink(phone, text)})
}

// PUT /admin/api/config
// The body is merged over the current configuration.
func (h *AdminHandler) UpdateConfig(c *fiber.Ctx) error {
	cfg := h.Store.Config()
	if err := c.BodyParser(&cfg); err != nil {
		return badRequest(c, "body")
	}
	res, err := h.Store.UpdateConfig(c.UserContext(), cfg)
	if err != nil {
		return fail(c, "admin.config.update", err, nil)
	}
	applog.Audit(c, "admin.config.update", map[string]any{
		"rate": res.Reprice.Rate, "repriced": len(res.Reprice.Updated), "failed": len(res.Reprice.Failed),
	})
	return c.JSON(res)
}

// POST /admin/api/config/rates
func (h *AdminHandler) RefreshRates(c *fiber.Ctx) error {
	res, q, err := h.Store.RefreshDollarRates(c.UserContext())
	if err != nil {
		return fail(c, "admin.config.rates", err, nil)
	}
	applog.Audit(c, "admin.config.rates", map[string]any{
		"blue": q.Blue, "official": q.Official, "fallback": q.Fallback,
	})
	return c.JSON(fiber.Map{"quote": q, "config": res.Config, "reprice": res.Reprice})
}

// POST /admin/api/refresh
func (h *AdminHandler) Refresh(c *fiber.Ctx) error {
	st := h.Store.Refresh(c.UserContext())
	applog.Audit(c, "admin.refresh", map[string]any{"products": len(st.Products), "offline": st.Offline})
	return c.JSON(fiber.Map{
		"loading":   st.Loading,
		"isOffline": st.Offline,
		"error":     st.Error,
		"products":  len(st.Products),
	})
}

// POST /admin/api/stock/check
func (h *AdminHandler) CheckStock(c *fiber.Ctx) error {
	if h.Monitor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "stock monitor disabled"})
	}
	report, err := h.Monitor.Run(c.UserContext())
	if err != nil {
		return fail(c, "admin.stock.check", err, nil)
	}
	applog.Audit(c, "admin.stock.check", map[string]any{
		"alerts": len(report.Alerts), "suppressed": report.Suppressed,
	})
	return c.JSON(report)
}
