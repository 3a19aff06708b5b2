package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"applestore/internal/domain"
	"applestore/internal/notify"
	"applestore/internal/rates"
	"applestore/internal/repos"
)

// fakeGateway is an in-memory Gateway with per-operation failure hooks.
type fakeGateway struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	config   *domain.StoreConfig
	nextID   int64
	calls    int

	listErr   error
	configErr error
	saveErr   error
	createErr error
	patchErr  map[int64]error
	panicList bool
}

func newFakeGateway(products ...domain.Product) *fakeGateway {
	g := &fakeGateway{products: map[int64]domain.Product{}, patchErr: map[int64]error{}, nextID: 100}
	for _, p := range products {
		g.products[p.ID] = p.Clone()
	}
	return g
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) ResetCalls() {
	g.mu.Lock()
	g.calls = 0
	g.mu.Unlock()
}

func (g *fakeGateway) stored(id int64) domain.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.products[id].Clone()
}

func (g *fakeGateway) ListProducts(context.Context) ([]domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.panicList {
		panic("driver exploded")
	}
	if g.listErr != nil {
		return nil, g.listErr
	}
	out := make([]domain.Product, 0, len(g.products))
	for _, p := range g.products {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (g *fakeGateway) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	p, ok := g.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("products.get: %w", domain.ErrNotFound)
	}
	return p.Clone(), nil
}

func (g *fakeGateway) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.createErr != nil {
		return domain.Product{}, g.createErr
	}
	g.nextID++
	p.ID = g.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	g.products[p.ID] = p.Clone()
	return p, nil
}

func (g *fakeGateway) UpdateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if _, ok := g.products[p.ID]; !ok {
		return domain.Product{}, fmt.Errorf("products.update: %w", domain.ErrNotFound)
	}
	p.UpdatedAt = time.Now().UTC()
	g.products[p.ID] = p.Clone()
	return p, nil
}

func (g *fakeGateway) PatchProduct(_ context.Context, id int64, patch repos.Patch) (domain.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if err := g.patchErr[id]; err != nil {
		return domain.Product{}, err
	}
	p, ok := g.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("products.patch: %w", domain.ErrNotFound)
	}
	for f, v := range patch {
		switch f {
		case repos.FieldIsOnSale:
			p.IsOnSale = v.(bool)
		case repos.FieldIsFeatured:
			p.IsFeatured = v.(bool)
		case repos.FieldPrice:
			p.Price = v.(float64)
		case repos.FieldPriceARS:
			p.PriceARS = v.(int64)
		case repos.FieldOriginalPrice:
			p.OriginalPrice = v.(*float64)
		case repos.FieldOriginalPriceARS:
			p.OriginalPriceARS = v.(*int64)
		case repos.FieldDiscountPercentage:
			p.DiscountPercentage = v.(*float64)
		case repos.FieldLastStockAlert:
			t := v.(time.Time)
			p.LastStockAlert = &t
		default:
			panic("fake gateway cannot patch " + string(f))
		}
	}
	p.UpdatedAt = time.Now().UTC()
	g.products[id] = p.Clone()
	return p, nil
}

func (g *fakeGateway) DeleteProduct(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if _, ok := g.products[id]; !ok {
		return fmt.Errorf("products.delete: %w", domain.ErrNotFound)
	}
	delete(g.products, id)
	return nil
}

func (g *fakeGateway) GetConfig(context.Context) (*domain.StoreConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.configErr != nil {
		return nil, g.configErr
	}
	if g.config == nil {
		return nil, nil
	}
	c := g.config.Clone()
	return &c, nil
}

func (g *fakeGateway) SaveConfig(_ context.Context, cfg domain.StoreConfig) (domain.StoreConfig, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.saveErr != nil {
		return domain.StoreConfig{}, g.saveErr
	}
	cfg.ID = 1
	c := cfg.Clone()
	g.config = &c
	return cfg, nil
}

type fakeRates struct{ q rates.Quote }

func (f fakeRates) Fetch(context.Context) rates.Quote { return f.q }

type recordingQueue struct {
	mu  sync.Mutex
	got []notify.Notification
}

func (q *recordingQueue) Enqueue(n notify.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.got = append(q.got, n)
	return true
}
