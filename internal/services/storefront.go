package services

import (
	"sort"
	"strings"

	"applestore/internal/domain"
)

type HomeSection struct {
	Section  domain.Section   `json:"section"`
	Products []domain.Product `json:"products"`
}

// HomeSections returns the visible homepage sections in configured order.
// The features section carries no products.
func (s *CatalogStore) HomeSections() []HomeSection {
	st := s.Snapshot()
	out := []HomeSection{}
	for _, sec := range st.Config.SectionsOrder {
		if !st.Config.SectionVisible(sec) {
			continue
		}
		hs := HomeSection{Section: sec, Products: []domain.Product{}}
		for _, p := range st.Products {
			if inSection(p, sec) {
				hs.Products = append(hs.Products, p)
			}
		}
		if sec != domain.SectionFeatures && len(hs.Products) == 0 {
			continue
		}
		out = append(out, hs)
	}
	return out
}

func inSection(p domain.Product, sec domain.Section) bool {
	switch sec {
	case domain.SectionSale:
		return p.IsOnSale
	case domain.SectionRefurbished:
		return p.Condition == domain.ConditionRefurbished || p.Condition == domain.ConditionUsed
	case domain.SectionFeatured:
		return p.IsFeatured
	}
	return false
}

// Filter narrows the storefront listing. Zero values match everything.
type Filter struct {
	Query     string
	Category  string
	OnSale    bool
	Condition domain.Condition
	// Preowned matches refurbished and used products.
	Preowned bool
	InStock  bool
}

func (f Filter) match(p domain.Product) bool {
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.OnSale && !p.IsOnSale {
		return false
	}
	if f.Condition != "" && p.Condition != f.Condition {
		return false
	}
	if f.Preowned && !inSection(p, domain.SectionRefurbished) {
		return false
	}
	if f.InStock && p.Stock <= 0 {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		for _, w := range strings.Fields(q) {
			if !strings.Contains(hay, w) {
				return false
			}
		}
	}
	return true
}

// Search lists matching products, featured first, then by name.
func (s *CatalogStore) Search(f Filter) []domain.Product {
	out := []domain.Product{}
	for _, p := range s.Products() {
		if f.match(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsFeatured != out[j].IsFeatured {
			return out[i].IsFeatured
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
