package repos

import (
	"context"

	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/pricing"
)

// SeedIfEmpty inserts the sample catalog, priced at the default rate, when
// the products table is empty. Returns how many products were inserted.
func SeedIfEmpty(ctx context.Context, g *Gateway) (int, error) {
	existing, err := g.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	rate := domain.DefaultStoreConfig().TotalRate()
	n := 0
	for _, p := range pricing.RepriceCatalog(domain.SampleProducts(), rate) {
		p.ID = 0
		if _, err := g.CreateProduct(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	applog.Info(nil, "db.seeded", map[string]any{"products": n})
	return n, nil
}
