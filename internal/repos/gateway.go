package repos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"

	"applestore/internal/cache"
	"applestore/internal/domain"
	applog "applestore/internal/log"
	"applestore/internal/metrics"
)

// Gateway is the only way the application reads or writes products and the
// store configuration. Built without a database it fails every call with
// domain.ErrUnavailable.
type Gateway struct {
	Products *ProductRepo
	Config   *ConfigRepo

	views   cache.Invalidator
	metrics *metrics.Metrics
}

// NewGateway accepts a nil db (persistence not configured).
func NewGateway(db *sqlx.DB, views cache.Invalidator, m *metrics.Metrics) *Gateway {
	g := &Gateway{views: views, metrics: m}
	if db != nil {
		g.Products = NewProductRepo(db)
		g.Config = NewConfigRepo(db)
	}
	return g
}

func (g *Gateway) Available() bool { return g != nil && g.Products != nil }

func (g *Gateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if !g.Available() {
		return nil, domain.ErrUnavailable
	}
	ps, err := g.Products.List(ctx)
	return ps, g.done("products.list", err)
}

func (g *Gateway) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	if !g.Available() {
		return domain.Product{}, domain.ErrUnavailable
	}
	p, err := g.Products.Get(ctx, id)
	return p, g.done("products.get", err)
}

func (g *Gateway) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if !g.Available() {
		return domain.Product{}, domain.ErrUnavailable
	}
	out, err := g.Products.Create(ctx, p)
	if err = g.done("products.create", err); err != nil {
		return domain.Product{}, err
	}
	g.invalidate(ctx)
	return out, nil
}

func (g *Gateway) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if !g.Available() {
		return domain.Product{}, domain.ErrUnavailable
	}
	out, err := g.Products.Update(ctx, p)
	if err = g.done("products.update", err); err != nil {
		return domain.Product{}, err
	}
	g.invalidate(ctx, cache.ProductView(out.ID))
	return out, nil
}

func (g *Gateway) PatchProduct(ctx context.Context, id int64, patch Patch) (domain.Product, error) {
	if !g.Available() {
		return domain.Product{}, domain.ErrUnavailable
	}
	out, err := g.Products.Patch(ctx, id, patch)
	if err = g.done("products.patch", err); err != nil {
		return domain.Product{}, err
	}
	applog.Debug(nil, "gateway.products.patch", map[string]any{"id": id, "columns": Columns(patch.Fields()...)})
	g.invalidate(ctx, cache.ProductView(id))
	return out, nil
}

func (g *Gateway) DeleteProduct(ctx context.Context, id int64) error {
	if !g.Available() {
		return domain.ErrUnavailable
	}
	if err := g.done("products.delete", g.Products.Delete(ctx, id)); err != nil {
		return err
	}
	g.invalidate(ctx, cache.ProductView(id))
	return nil
}

// GetConfig returns nil, nil when the singleton row does not exist yet.
func (g *Gateway) GetConfig(ctx context.Context) (*domain.StoreConfig, error) {
	if !g.Available() {
		return nil, domain.ErrUnavailable
	}
	cfg, err := g.Config.Get(ctx)
	return cfg, g.done("config.get", err)
}

func (g *Gateway) SaveConfig(ctx context.Context, cfg domain.StoreConfig) (domain.StoreConfig, error) {
	if !g.Available() {
		return domain.StoreConfig{}, domain.ErrUnavailable
	}
	out, err := g.Config.Save(ctx, cfg)
	if err = g.done("config.save", err); err != nil {
		return domain.StoreConfig{}, err
	}
	g.invalidate(ctx)
	return out, nil
}

func (g *Gateway) done(op string, err error) error {
	err = classify(op, err)
	g.metrics.GatewayOp(op, err)
	return err
}

func (g *Gateway) invalidate(ctx context.Context, extra ...string) {
	if g.views == nil {
		return
	}
	keys := append(append([]string(nil), cache.MutationViews...), extra...)
	if err := g.views.Invalidate(ctx, keys...); err != nil {
		applog.Warn(nil, "gateway.views.invalidate.fail", err, map[string]any{"keys": keys})
	}
}

// classify turns driver errors into the domain taxonomy.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return pkgerrors.Wrap(domain.ErrNotFound, op)
	case isConnectivity(err):
		return &domain.ConnectivityError{Op: op, Err: err}
	}
	return pkgerrors.Wrap(err, op)
}

func isConnectivity(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	for _, target := range []error{
		driver.ErrBadConn, sql.ErrConnDone, io.ErrUnexpectedEOF,
		syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EPIPE,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
