package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applestore/internal/domain"
	"applestore/internal/services"
)

func storefrontFixture(t *testing.T) (*services.CatalogStore, *fakeGateway) {
	featured := prod(1, "iPhone 15 Pro", 999, 5)
	featured.IsFeatured = true
	used := prod(2, "iPhone 12", 399, 1)
	used.Condition = domain.ConditionRefurbished
	mac := prod(3, "MacBook Air M2", 1199, 0)
	mac.Category = "MacBook"
	orig := 279.0
	pct := 10.0
	sale := prod(4, "AirPods Pro 2", 251, 7)
	sale.Category = "AirPods"
	sale.IsOnSale, sale.OriginalPrice, sale.DiscountPercentage = true, &orig, &pct
	return onlineStore(t, featured, used, mac, sale)
}

func sectionNames(hs []services.HomeSection) []domain.Section {
	out := []domain.Section{}
	for _, h := range hs {
		out = append(out, h.Section)
	}
	return out
}

func TestHomeSections(t *testing.T) {
	s, _ := storefrontFixture(t)

	hs := s.HomeSections()
	assert.Equal(t, domain.AllSections, sectionNames(hs))
	require.Len(t, hs[0].Products, 1)
	assert.Equal(t, int64(4), hs[0].Products[0].ID)
	assert.Equal(t, int64(2), hs[1].Products[0].ID)
	assert.Equal(t, int64(1), hs[2].Products[0].ID)
	assert.Empty(t, hs[3].Products)

	cfg := domain.DefaultStoreConfig()
	cfg.ShowSaleSection = false
	cfg.SectionsOrder = []domain.Section{domain.SectionFeatures, domain.SectionFeatured, domain.SectionRefurbished, domain.SectionSale}
	_, err := s.UpdateConfig(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t,
		[]domain.Section{domain.SectionFeatures, domain.SectionFeatured, domain.SectionRefurbished},
		sectionNames(s.HomeSections()))
}

func TestSearch(t *testing.T) {
	s, _ := storefrontFixture(t)

	ids := func(ps []domain.Product) []int64 {
		out := []int64{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 4, 2, 3}, ids(s.Search(services.Filter{})), "featured first then by name")
	assert.Equal(t, []int64{1, 2}, ids(s.Search(services.Filter{Query: "iphone"})))
	assert.Equal(t, []int64{3}, ids(s.Search(services.Filter{Category: "macbook"})))
	assert.Equal(t, []int64{4}, ids(s.Search(services.Filter{OnSale: true})))
	assert.Equal(t, []int64{2}, ids(s.Search(services.Filter{Condition: domain.ConditionRefurbished})))
	assert.Equal(t, []int64{2}, ids(s.Search(services.Filter{Preowned: true})))
	assert.NotContains(t, ids(s.Search(services.Filter{InStock: true})), int64(3))
	assert.Empty(t, s.Search(services.Filter{Query: "pixel"}))
}
