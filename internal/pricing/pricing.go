// Package pricing derives local-currency prices from USD prices and the
// store's dollar rate. Every function here is pure.
package pricing

import (
	"github.com/shopspring/decimal"

	"applestore/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ComputeLocalPrice returns round(usd * rate), rounding halves up.
func ComputeLocalPrice(usd, rate float64) int64 {
	return decimal.NewFromFloat(usd).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// RepriceCatalog recomputes PriceARS (and OriginalPriceARS for products on
// sale) against rate. The input slice is left untouched.
func RepriceCatalog(products []domain.Product, rate float64) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		out = append(out, Reprice(p, rate))
	}
	return out
}

// Reprice is RepriceCatalog for a single product.
func Reprice(p domain.Product, rate float64) domain.Product {
	q := p.Clone()
	q.PriceARS = ComputeLocalPrice(q.Price, rate)
	if q.IsOnSale && q.OriginalPrice != nil {
		ars := ComputeLocalPrice(*q.OriginalPrice, rate)
		q.OriginalPriceARS = &ars
	}
	return q
}

// ApplySale moves a product into or out of sale state.
//
// Entering a sale records the current prices as the originals and discounts
// the USD price by discount percent. A product already on sale is
// discounted from its recorded original. Leaving a sale restores the
// originals and clears the sale fields.
func ApplySale(p domain.Product, onSale bool, discount, rate float64) (domain.Product, error) {
	q := p.Clone()
	if !onSale {
		return exitSale(q, rate)
	}
	if discount <= 0 || discount >= 100 {
		return p, domain.Invalid("discountPercentage", "must be greater than 0 and less than 100")
	}

	orig, origARS := q.Price, q.PriceARS
	if q.IsOnSale && q.OriginalPrice != nil {
		orig = *q.OriginalPrice
		if q.OriginalPriceARS != nil {
			origARS = *q.OriginalPriceARS
		} else {
			origARS = ComputeLocalPrice(orig, rate)
		}
	}

	q.IsOnSale = true
	q.OriginalPrice = &orig
	q.OriginalPriceARS = &origARS
	d := discount
	q.DiscountPercentage = &d
	q.Price = DiscountedPrice(orig, discount)
	q.PriceARS = ComputeLocalPrice(q.Price, rate)
	return q, nil
}

func exitSale(q domain.Product, rate float64) (domain.Product, error) {
	if !q.IsOnSale {
		q.ClearSale()
		return q, nil
	}
	if q.OriginalPrice == nil {
		return q, domain.ErrMissingOriginalPrice
	}
	q.Price = *q.OriginalPrice
	if q.OriginalPriceARS != nil {
		q.PriceARS = *q.OriginalPriceARS
	} else {
		q.PriceARS = ComputeLocalPrice(q.Price, rate)
	}
	q.ClearSale()
	return q, nil
}

// DiscountedPrice returns round(original * (1 - discount/100)).
func DiscountedPrice(original, discount float64) float64 {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount).Div(hundred))
	return decimal.NewFromFloat(original).Mul(factor).Round(0).InexactFloat64()
}
