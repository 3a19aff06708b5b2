package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"applestore/internal/cache"
	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/metrics"
	"applestore/internal/pricing"
	"applestore/internal/rates"
	"applestore/internal/repos"
	"applestore/internal/validate"
)

// Gateway is the persistence surface the store needs. *repos.Gateway
// satisfies it.
type Gateway interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	PatchProduct(ctx context.Context, id int64, patch repos.Patch) (domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetConfig(ctx context.Context) (*domain.StoreConfig, error)
	SaveConfig(ctx context.Context, cfg domain.StoreConfig) (domain.StoreConfig, error)
}

var (
	ErrStoreClosed  = errors.New("catalog store is closed")
	ErrNoRateSource = errors.New("no dollar rate provider configured")

	errRefreshPanic = errors.New("refresh panicked")
)

const (
	offlineMessage = "Sin conexión con la base de datos: mostrando productos de ejemplo."
	loadMessage    = "No se pudieron cargar los productos."
)

// State is a point-in-time copy of the store.
type State struct {
	Products []domain.Product   `json:"products"`
	Config   domain.StoreConfig `json:"config"`
	Loading  bool               `json:"loading"`
	Offline  bool               `json:"isOffline"`
	Error    string             `json:"error,omitempty"`
}

// RepriceReport lists which products were rewritten after a config change.
type RepriceReport struct {
	Rate    float64          `json:"rate"`
	Updated []int64          `json:"updated"`
	Failed  map[int64]string `json:"failed,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type ConfigUpdate struct {
	Config  domain.StoreConfig `json:"config"`
	Reprice RepriceReport      `json:"reprice"`
}

// CatalogStore holds the catalog and configuration in memory and routes every
// change through the Gateway. While offline it serves sample data and
// rejects mutations without touching the gateway.
type CatalogStore struct {
	gw             Gateway
	rates          rates.Provider
	metrics        *metrics.Metrics
	views          cache.Invalidator
	now            func() time.Time
	repriceWorkers int

	mu       sync.RWMutex
	products []domain.Product
	config   domain.StoreConfig
	loading  bool
	offline  bool
	errMsg   string
	closed   bool
}

type Option func(*CatalogStore)

func WithRates(p rates.Provider) Option { return func(s *CatalogStore) { s.rates = p } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *CatalogStore) { s.metrics = m } }

// WithViews drops rendered pages once a change is visible in memory.
func WithViews(v cache.Invalidator) Option { return func(s *CatalogStore) { s.views = v } }

func WithClock(now func() time.Time) Option { return func(s *CatalogStore) { s.now = now } }

// WithRepriceWorkers bounds concurrent product writes after a config change.
func WithRepriceWorkers(n int) Option {
	return func(s *CatalogStore) {
		if n > 0 {
			s.repriceWorkers = n
		}
	}
}

func NewCatalogStore(gw Gateway, opts ...Option) *CatalogStore {
	s := &CatalogStore{
		gw:             gw,
		now:            time.Now,
		repriceWorkers: 4,
		products:       []domain.Product{},
		config:         domain.DefaultStoreConfig(),
		loading:        true,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *CatalogStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return State{
		Products: out,
		Config:   s.config.Clone(),
		Loading:  s.loading,
		Offline:  s.offline,
		Error:    s.errMsg,
	}
}

func (s *CatalogStore) Products() []domain.Product { return s.Snapshot().Products }

func (s *CatalogStore) Product(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return domain.Product{}, false
}

func (s *CatalogStore) Config() domain.StoreConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Clone()
}

func (s *CatalogStore) Offline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offline
}

// Close marks the store dead; in-flight loads discard their results.
func (s *CatalogStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Refresh reloads products and configuration together. It never fails:
// a connectivity problem on the product load switches to offline mode with
// sample data, a failed config load falls back to defaults.
func (s *CatalogStore) Refresh(ctx context.Context) (st State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.Snapshot()
	}
	s.loading = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			applog.Error(nil, "catalog.refresh.panic", fmt.Errorf("%v", r), nil)
			s.commit(func() {
				s.products = domain.SampleProducts()
				s.config = domain.DefaultStoreConfig()
				s.offline = true
				s.errMsg = offlineMessage
			})
		}
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		st = s.Snapshot()
	}()

	var (
		products []domain.Product
		prodErr  error
		cfg      *domain.StoreConfig
		cfgErr   error
	)
	var g errgroup.Group
	g.Go(func() error {
		defer recoverInto(&prodErr)
		products, prodErr = s.gw.ListProducts(ctx)
		return nil
	})
	g.Go(func() error {
		defer recoverInto(&cfgErr)
		cfg, cfgErr = s.gw.GetConfig(ctx)
		return nil
	})
	_ = g.Wait()

	offline, errMsg := false, ""
	switch {
	case prodErr == nil:
	case domain.IsConnectivity(prodErr) || errors.Is(prodErr, errRefreshPanic):
		applog.Warn(nil, "catalog.refresh.offline", prodErr, nil)
		products = domain.SampleProducts()
		offline, errMsg = true, offlineMessage
	default:
		applog.Error(nil, "catalog.refresh.products.fail", prodErr, nil)
		products = []domain.Product{}
		errMsg = loadMessage
	}

	config := domain.DefaultStoreConfig()
	loaded := cfgErr == nil && cfg != nil
	switch {
	case loaded:
		config = cfg.Clone()
	case cfgErr != nil:
		applog.Warn(nil, "catalog.refresh.config.defaults", cfgErr, nil)
	}
	if loaded && !offline {
		products = pricing.RepriceCatalog(products, config.TotalRate())
	}

	s.commit(func() {
		s.products = products
		s.config = config
		s.offline = offline
		s.errMsg = errMsg
	})
	s.invalidate(ctx, productIDs(products)...)
	s.metrics.Refreshed(offline)
	applog.Info(nil, "catalog.refresh", map[string]any{"products": len(products), "offline": offline})
	return st
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", errRefreshPanic, r)
	}
}

// commit applies fn under the write lock unless the store was closed.
func (s *CatalogStore) commit(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

// invalidate runs after the in-memory commit. Pages rendered between a
// gateway write and the commit would otherwise stay cached with old data.
func (s *CatalogStore) invalidate(ctx context.Context, ids ...int64) {
	if s.views == nil {
		return
	}
	keys := append([]string(nil), cache.MutationViews...)
	for _, id := range ids {
		keys = append(keys, cache.ProductView(id))
	}
	if err := s.views.Invalidate(ctx, keys...); err != nil {
		applog.Warn(nil, "catalog.views.invalidate.fail", err, map[string]any{"keys": keys})
	}
}

func productIDs(products []domain.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *CatalogStore) guard() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	if s.offline {
		return domain.ErrOffline
	}
	return nil
}

func (s *CatalogStore) rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.TotalRate()
}

func (s *CatalogStore) put(p domain.Product) {
	s.commit(func() {
		for i := range s.products {
			if s.products[i].ID == p.ID {
				s.products[i] = p
				return
			}
		}
		s.products = append(s.products, p)
	})
}

// AddProduct prices p at the current rate and persists it. New products
// never start on sale.
func (s *CatalogStore) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := s.guard(); err != nil {
		return domain.Product{}, err
	}
	p.ID = 0
	p.LastStockAlert = nil
	p.ClearSale()
	if err := validate.Product(p); err != nil {
		return domain.Product{}, err
	}
	p.PriceARS = pricing.ComputeLocalPrice(p.Price, s.rate())

	created, err := s.gw.CreateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.put(created.Clone())
	s.invalidate(ctx, created.ID)
	return created, nil
}

// UpdateProduct replaces the editable fields of an existing product. The
// alert stamp and creation time are kept from the stored row.
func (s *CatalogStore) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if err := s.guard(); err != nil {
		return domain.Product{}, err
	}
	if !p.IsOnSale {
		p.ClearSale()
	}
	if err := validate.Product(p); err != nil {
		return domain.Product{}, err
	}
	cur, err := s.gw.GetProduct(ctx, p.ID)
	if err != nil {
		return domain.Product{}, err
	}
	p.LastStockAlert = cur.LastStockAlert
	p.CreatedAt = cur.CreatedAt
	p = pricing.Reprice(p, s.rate())

	out, err := s.gw.UpdateProduct(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	s.put(out.Clone())
	s.invalidate(ctx, out.ID)
	return out, nil
}

func (s *CatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.gw.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.commit(func() {
		kept := s.products[:0]
		for _, p := range s.products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		s.products = kept
	})
	s.invalidate(ctx, id)
	return nil
}

// SetProductOnSale enters or leaves sale state for one product. The product
// is repriced at the current rate first, so originalPriceARS on entering a
// sale reflects today's rate rather than the stored priceARS.
func (s *CatalogStore) SetProductOnSale(ctx context.Context, id int64, onSale bool, discount float64) (domain.Product, error) {
	if err := s.guard(); err != nil {
		return domain.Product{}, err
	}
	if onSale {
		if err := validate.Discount(discount); err != nil {
			return domain.Product{}, err
		}
	}
	cur, err := s.gw.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	rate := s.rate()
	// stored local prices may predate the current rate
	next, err := pricing.ApplySale(pricing.Reprice(cur, rate), onSale, discount, rate)
	if err != nil {
		return domain.Product{}, err
	}
	out, err := s.gw.PatchProduct(ctx, id, repos.Patch{
		repos.FieldIsOnSale:           next.IsOnSale,
		repos.FieldPrice:              next.Price,
		repos.FieldPriceARS:           next.PriceARS,
		repos.FieldOriginalPrice:      next.OriginalPrice,
		repos.FieldOriginalPriceARS:   next.OriginalPriceARS,
		repos.FieldDiscountPercentage: next.DiscountPercentage,
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.put(out.Clone())
	s.invalidate(ctx, out.ID)
	return out, nil
}

func (s *CatalogStore) ToggleFeatured(ctx context.Context, id int64) (domain.Product, error) {
	if err := s.guard(); err != nil {
		return domain.Product{}, err
	}
	cur, err := s.gw.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	out, err := s.gw.PatchProduct(ctx, id, repos.Patch{repos.FieldIsFeatured: !cur.IsFeatured})
	if err != nil {
		return domain.Product{}, err
	}
	s.put(out.Clone())
	s.invalidate(ctx, out.ID)
	return out, nil
}

// UpdateConfig persists cfg and then reprices the whole catalog at the new
// rate. Individual reprice failures are logged and reported, not returned.
func (s *CatalogStore) UpdateConfig(ctx context.Context, cfg domain.StoreConfig) (ConfigUpdate, error) {
	if err := s.guard(); err != nil {
		return ConfigUpdate{}, err
	}
	if err := validate.StoreConfig(cfg); err != nil {
		return ConfigUpdate{}, err
	}
	cur := s.Config()
	if cfg.LastDollarUpdate == nil || cfg.DollarRateBlue != cur.DollarRateBlue || cfg.DollarRateOfficial != cur.DollarRateOfficial {
		now := s.now().UTC()
		cfg.LastDollarUpdate = &now
	}

	saved, err := s.gw.SaveConfig(ctx, cfg)
	if err != nil {
		return ConfigUpdate{}, err
	}
	s.commit(func() { s.config = saved.Clone() })
	s.invalidate(ctx, productIDs(s.Products())...)
	s.metrics.DollarRate(saved.DollarRateBlue, saved.DollarRateOfficial)

	report := s.repriceAll(ctx, saved.TotalRate())
	return ConfigUpdate{Config: saved, Reprice: report}, nil
}

func (s *CatalogStore) repriceAll(ctx context.Context, rate float64) RepriceReport {
	report := RepriceReport{Rate: rate, Updated: []int64{}, Failed: map[int64]string{}}

	products, err := s.gw.ListProducts(ctx)
	if err != nil {
		applog.Warn(nil, "catalog.reprice.list.fail", err, nil)
		report.Error = err.Error()
		products = s.Products()
	}

	var (
		mu      sync.Mutex
		updated []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.repriceWorkers)
	for _, p := range pricing.RepriceCatalog(products, rate) {
		g.Go(func() error {
			var origARS *int64
			if p.IsOnSale {
				origARS = p.OriginalPriceARS
			}
			out, err := s.gw.PatchProduct(gctx, p.ID, repos.Patch{
				repos.FieldPriceARS:         p.PriceARS,
				repos.FieldOriginalPriceARS: origARS,
			})
			s.metrics.Repriced(err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				applog.Warn(nil, "catalog.reprice.skip", err, map[string]any{"product_id": p.ID})
				report.Failed[p.ID] = err.Error()
				return nil
			}
			report.Updated = append(report.Updated, p.ID)
			updated = append(updated, out)
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range updated {
		s.put(p.Clone())
	}
	s.invalidate(ctx, productIDs(updated)...)
	applog.Info(nil, "catalog.reprice", map[string]any{
		"rate": rate, "updated": len(report.Updated), "failed": len(report.Failed),
	})
	return report
}

// RefreshDollarRates pulls fresh quotes and saves them through UpdateConfig.
// A fallback quote never overwrites rates the store already holds: in that
// case nothing is written and the current config is returned with the quote.
// The fallback constants are saved only when a rate is still missing.
func (s *CatalogStore) RefreshDollarRates(ctx context.Context) (ConfigUpdate, rates.Quote, error) {
	if err := s.guard(); err != nil {
		return ConfigUpdate{}, rates.Quote{}, err
	}
	if s.rates == nil {
		return ConfigUpdate{}, rates.Quote{}, ErrNoRateSource
	}
	q := s.rates.Fetch(ctx)
	cfg := s.Config()
	if q.Fallback && cfg.DollarRateBlue > 0 && cfg.DollarRateOfficial > 0 {
		applog.Warn(nil, "catalog.rates.kept", nil, map[string]any{"blue": cfg.DollarRateBlue})
		return ConfigUpdate{Config: cfg}, q, nil
	}
	cfg.DollarRateBlue = q.Blue
	cfg.DollarRateOfficial = q.Official
	now := s.now().UTC()
	cfg.LastDollarUpdate = &now

	upd, err := s.UpdateConfig(ctx, cfg)
	return upd, q, err
}
