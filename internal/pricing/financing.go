package pricing

import (
	"github.com/shopspring/decimal"

	"applestore/internal/domain"
)

type InstallmentQuote struct {
	Installments   int     `json:"installments"`
	Interest       float64 `json:"interest"`
	Total          int64   `json:"total"`
	PerInstallment int64   `json:"perInstallment"`
}

// Quote applies a financing option's interest to a local price.
func Quote(priceARS int64, opt domain.FinancingOption) InstallmentQuote {
	total := decimal.NewFromInt(priceARS).
		Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(opt.Interest).Div(hundred)))
	n := opt.Installments
	if n < 1 {
		n = 1
	}
	return InstallmentQuote{
		Installments:   opt.Installments,
		Interest:       opt.Interest,
		Total:          total.Round(0).IntPart(),
		PerInstallment: total.Div(decimal.NewFromInt(int64(n))).Round(0).IntPart(),
	}
}

func Quotes(priceARS int64, opts []domain.FinancingOption) []InstallmentQuote {
	out := make([]InstallmentQuote, 0, len(opts))
	for _, o := range opts {
		out = append(out, Quote(priceARS, o))
	}
	return out
}
