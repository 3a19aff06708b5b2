package repos_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applestore/internal/cache"
	"applestore/internal/domain"
	"applestore/internal/repos"
)

func memGateway(t *testing.T) (*repos.Gateway, *cache.Memory) {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.Migrate(db))
	views := cache.NewMemory(time.Minute)
	return repos.NewGateway(db, views, nil), views
}

func warmViews(ctx context.Context, v *cache.Memory, keys ...string) {
	for _, k := range keys {
		v.Set(ctx, k, []byte(k))
	}
}

func TestGatewayProductLifecycle(t *testing.T) {
	ctx := context.Background()
	gw, views := memGateway(t)

	battery := 92
	created, err := gw.CreateProduct(ctx, domain.Product{
		Name:              "iPhone 13",
		Category:          "iPhones",
		Price:             499,
		PriceARS:          658680,
		Stock:             2,
		Condition:         domain.ConditionRefurbished,
		Colors:            []string{"Midnight", "Starlight"},
		BatteryPercentage: &battery,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, domain.DefaultLowStockThreshold, created.LowStockThreshold)
	assert.Equal(t, []string{"Midnight", "Starlight"}, created.Colors)
	require.NotNil(t, created.BatteryPercentage)
	assert.Equal(t, 92, *created.BatteryPercentage)
	assert.Nil(t, created.OriginalPrice)

	got, err := gw.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	warmViews(ctx, views, append(cache.MutationViews, cache.ProductView(created.ID))...)
	time.Sleep(2 * time.Millisecond)
	got.Stock = 7
	got.Name = "iPhone 13 128GB"
	updated, err := gw.UpdateProduct(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	for _, k := range append(cache.MutationViews, cache.ProductView(created.ID)) {
		_, ok := views.Get(ctx, k)
		assert.False(t, ok, "view %s should be invalidated", k)
	}

	orig, origARS, pct := 499.0, int64(658680), 10.0
	patched, err := gw.PatchProduct(ctx, created.ID, repos.Patch{
		repos.FieldIsOnSale:           true,
		repos.FieldPrice:              449.0,
		repos.FieldPriceARS:           int64(592680),
		repos.FieldOriginalPrice:      &orig,
		repos.FieldOriginalPriceARS:   &origARS,
		repos.FieldDiscountPercentage: &pct,
	})
	require.NoError(t, err)
	assert.True(t, patched.IsOnSale)
	assert.Equal(t, 449.0, patched.Price)
	require.NotNil(t, patched.OriginalPriceARS)
	assert.Equal(t, origARS, *patched.OriginalPriceARS)
	assert.Equal(t, 7, patched.Stock)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	stamped, err := gw.PatchProduct(ctx, created.ID, repos.Patch{repos.FieldLastStockAlert: &now})
	require.NoError(t, err)
	require.NotNil(t, stamped.LastStockAlert)
	assert.True(t, now.Equal(*stamped.LastStockAlert))

	list, err := gw.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, gw.DeleteProduct(ctx, created.ID))
	_, err = gw.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, gw.DeleteProduct(ctx, created.ID), domain.ErrNotFound)
}

func TestGatewayListOrderedByID(t *testing.T) {
	ctx := context.Background()
	gw, _ := memGateway(t)
	n, err := repos.SeedIfEmpty(ctx, gw)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = repos.SeedIfEmpty(ctx, gw)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := gw.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Less(t, list[0].ID, list[1].ID)
	assert.Less(t, list[1].ID, list[2].ID)
	assert.Equal(t, "iPhone 15 Pro", list[0].Name)
	assert.Equal(t, int64(1318680), list[0].PriceARS)
	assert.True(t, list[2].IsOnSale)
}

func TestGatewayUpdateMissing(t *testing.T) {
	gw, _ := memGateway(t)
	_, err := gw.UpdateProduct(context.Background(), domain.Product{ID: 404, Name: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = gw.PatchProduct(context.Background(), 404, repos.Patch{repos.FieldIsFeatured: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGatewayConfigSingleton(t *testing.T) {
	ctx := context.Background()
	gw, views := memGateway(t)

	cfg, err := gw.GetConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg, "missing singleton is not an error")

	warmViews(ctx, views, cache.MutationViews...)
	in := domain.DefaultStoreConfig()
	saved, err := gw.SaveConfig(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.Equal(t, in.FinancingOptions, saved.FinancingOptions)
	assert.Equal(t, in.SectionsOrder, saved.SectionsOrder)
	for _, k := range cache.MutationViews {
		_, ok := views.Get(ctx, k)
		assert.False(t, ok, k)
	}

	time.Sleep(2 * time.Millisecond)
	in.DollarRateBlue = 1400
	in.StoreName = "Karen"
	again, err := gw.SaveConfig(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)
	assert.True(t, again.UpdatedAt.After(saved.UpdatedAt))

	cfg, err = gw.GetConfig(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1400.0, cfg.DollarRateBlue)
	assert.Equal(t, "Karen", cfg.StoreName)
}

func TestGatewayUnavailable(t *testing.T) {
	ctx := context.Background()
	gw := repos.NewGateway(nil, nil, nil)
	assert.False(t, gw.Available())

	_, err := gw.ListProducts(ctx)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = gw.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = gw.CreateProduct(ctx, domain.Product{})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = gw.UpdateProduct(ctx, domain.Product{})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = gw.PatchProduct(ctx, 1, nil)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.ErrorIs(t, gw.DeleteProduct(ctx, 1), domain.ErrUnavailable)
	_, err = gw.GetConfig(ctx)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	_, err = gw.SaveConfig(ctx, domain.StoreConfig{})
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.True(t, domain.IsConnectivity(err))
}

func TestGatewayDeadlineIsConnectivity(t *testing.T) {
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, repos.Migrate(db))
	gw := repos.NewGateway(db, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	_, err = gw.ListProducts(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsConnectivity(err), "got %v", err)
	_ = db.Close()
}

func TestConnectivityErrorUnwraps(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := &domain.ConnectivityError{Op: "products.list", Err: opErr}
	var target *net.OpError
	assert.True(t, errors.As(err, &target))
	assert.True(t, domain.IsConnectivity(err))
	assert.False(t, domain.IsConnectivity(errors.New("syntax error")))
}
