package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"applestore/internal/cache"
	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/notify"
	"applestore/internal/pricing"
	"applestore/internal/services"
	"applestore/internal/validate"
)

type StorefrontHandler struct {
	Store *services.CatalogStore
	Views cache.Views
}

func (h *StorefrontHandler) base() fiber.Map {
	st := h.Store.Snapshot()
	return fiber.Map{
		"Config":     st.Config,
		"Offline":    st.Offline,
		"Error":      st.Error,
		"Categories": domain.Categories,
		"Contact":    notify.InquiryLink(st.Config.WhatsappNumber, ""),
	}
}

// GET /
func (h *StorefrontHandler) Home(c *fiber.Ctx) error {
	return renderCached(c, h.Views, cache.ViewHome, "home", func() fiber.Map {
		data := h.base()
		data["Sections"] = h.Store.HomeSections()
		return data
	})
}

// filterFrom reads the listing query (filter, category, condition, stock, q).
// ok is false on any invalid parameter.
func filterFrom(c *fiber.Ctx) (f services.Filter, field string, ok bool) {
	switch strings.ToLower(strings.TrimSpace(c.Query("filter"))) {
	case "":
	case "ofertas":
		f.OnSale = true
	case "seminuevos":
		f.Preowned = true
	default:
		return f, "filter", false
	}
	if raw := c.Query("category"); strings.TrimSpace(raw) != "" {
		cat, valid := validate.Category(raw)
		if !valid {
			return f, "category", false
		}
		f.Category = cat
	}
	if raw := strings.TrimSpace(c.Query("condition")); raw != "" {
		cond := domain.Condition(strings.ToLower(raw))
		if !cond.Valid() {
			return f, "condition", false
		}
		f.Condition = cond
	}
	switch strings.ToLower(strings.TrimSpace(c.Query("stock"))) {
	case "":
	case "disponible":
		f.InStock = true
	default:
		return f, "stock", false
	}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		q, valid := validate.Q(raw)
		if !valid {
			return f, "q", false
		}
		f.Query = q
	}
	return f, "", true
}

// GET /productos
func (h *StorefrontHandler) Products(c *fiber.Ctx) error {
	f, field, ok := filterFrom(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": field})
		data := h.base()
		data["Products"] = []domain.Product{}
		data["Count"] = 0
		data["Q"], data["Category"], data["Filter"] = "", "", ""
		data["Err"] = "Filtro de búsqueda inválido"
		return c.Status(fiber.StatusBadRequest).Render("products", page(data))
	}
	build := func() fiber.Map {
		data := h.base()
		products := h.Store.Search(f)
		data["Products"] = products
		data["Count"] = len(products)
		data["Filter"] = c.Query("filter")
		data["Category"] = f.Category
		data["Q"] = f.Query
		return data
	}
	if len(c.Request().URI().QueryString()) == 0 {
		return renderCached(c, h.Views, cache.ViewProducts, "products", build)
	}
	return render(c, "products", build())
}

// GET /productos/:id
func (h *StorefrontHandler) Product(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "Este producto ya no está disponible")
	}
	p, ok := h.Store.Product(id)
	if !ok {
		return notFound(c, "Este producto ya no está disponible")
	}
	return renderCached(c, h.Views, cache.ProductView(id), "product", func() fiber.Map {
		data := h.base()
		cfg := h.Store.Config()
		data["P"] = p
		data["Inquiry"] = notify.InquiryLink(cfg.WhatsappNumber, notify.InquiryMessage(p, cfg.StoreName))
		if cfg.ShowFinancingOptions {
			data["Visa"] = pricing.Quotes(p.PriceARS, cfg.FinancingOptions.Visa)
			data["Naranja"] = pricing.Quotes(p.PriceARS, cfg.FinancingOptions.Naranja)
			data["FinancingInquiry"] = notify.InquiryLink(cfg.WhatsappNumber, notify.FinancingInquiryMessage(p))
		}
		return data
	})
}

// GET /admin/dashboard
func (h *StorefrontHandler) Dashboard(c *fiber.Ctx) error {
	return renderCached(c, h.Views, cache.ViewAdminDashboard, "admin_dashboard", func() fiber.Map {
		data := h.base()
		products := h.Store.Products()
		now := time.Now()
		low := []domain.Product{}
		onSale, featured := 0, 0
		for _, p := range products {
			if p.Stock < p.Threshold() {
				low = append(low, p)
			}
			if p.IsOnSale {
				onSale++
			}
			if p.IsFeatured {
				featured++
			}
		}
		cfg := h.Store.Config()
		data["Products"] = products
		data["Total"] = len(products)
		data["OnSale"] = onSale
		data["Featured"] = featured
		data["LowStock"] = low
		data["DueAlerts"] = len(services.ScanLowStock(products, now))
		data["Rate"] = cfg.TotalRate()
		return data
	})
}
