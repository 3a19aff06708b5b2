package handlers

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"applestore/internal/cache"
	applog "applestore/internal/log"
	"applestore/internal/notify"
)

// NewViews loads the storefront templates with the price helpers they use.
func NewViews(dir string) *html.Engine {
	engine := html.New(dir, ".html")
	engine.AddFuncMap(map[string]any{
		"ars":   notify.FormatARS,
		"usd":   notify.FormatUSD,
		"lower": strings.ToLower,
	})
	return engine
}

func page(data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["Year"]; !ok {
		data["Year"] = time.Now().Year()
	}
	return data
}

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	return c.Render(tmpl, page(data))
}

// renderCached serves key from the view cache, rendering and storing it on a
// miss. Only successful pages are cached.
func renderCached(c *fiber.Ctx, views cache.Views, key, tmpl string, data func() fiber.Map) error {
	if body, ok := views.Get(c.UserContext(), key); ok {
		c.Set("X-View-Cache", "hit")
		c.Type("html", "utf-8")
		return c.Send(body)
	}
	eng := c.App().Config().Views
	if eng == nil {
		return render(c, tmpl, data())
	}
	var buf bytes.Buffer
	if err := eng.Render(&buf, tmpl, page(data())); err != nil {
		applog.Error(c, "view.render.fail", err, map[string]any{"view": tmpl})
		return err
	}
	body := buf.Bytes()
	views.Set(c.UserContext(), key, body)
	c.Set("X-View-Cache", "miss")
	c.Type("html", "utf-8")
	return c.Send(body)
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", page(fiber.Map{"Message": msg}))
}
