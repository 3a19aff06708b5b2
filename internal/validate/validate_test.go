package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applestore/internal/domain"
	"applestore/internal/validate"
)

func TestID(t *testing.T) {
	id, ok := validate.ID(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	for _, s := range []string{"", "0", "-1", "abc", "1; DROP TABLE products"} {
		_, ok := validate.ID(s)
		assert.False(t, ok, s)
	}
}

func TestQ(t *testing.T) {
	q, ok := validate.Q("  iPhone 15 Pro ")
	assert.True(t, ok)
	assert.Equal(t, "iPhone 15 Pro", q)
	_, ok = validate.Q("cargador <script>")
	assert.False(t, ok)
	_, ok = validate.Q("   ")
	assert.False(t, ok)
	_, ok = validate.Q("batería")
	assert.True(t, ok)
}

func TestDiscount(t *testing.T) {
	for _, d := range []float64{0.1, 5, 70, 99.9} {
		assert.NoError(t, validate.Discount(d), "%v", d)
	}
	for _, d := range []float64{0, -1, 100, 120} {
		assert.True(t, domain.IsValidation(validate.Discount(d)), "%v", d)
	}
}

func TestProduct(t *testing.T) {
	ok := domain.Product{Name: "iPad", Price: 599, Stock: 2, Condition: domain.ConditionNew}
	assert.NoError(t, validate.Product(ok))

	orig := 500.0
	bad := map[string]domain.Product{
		"no name":        {Price: 1},
		"negative price": {Name: "x", Price: -1},
		"negative stock": {Name: "x", Stock: -1},
		"condition":      {Name: "x", Condition: "mint"},
		"sale w/o orig":  {Name: "x", Price: 10, IsOnSale: true},
		"sale above":     {Name: "x", Price: 600, IsOnSale: true, OriginalPrice: &orig},
	}
	for name, p := range bad {
		assert.True(t, domain.IsValidation(validate.Product(p)), name)
	}
}

func TestStoreConfig(t *testing.T) {
	assert.NoError(t, validate.StoreConfig(domain.DefaultStoreConfig()))

	c := domain.DefaultStoreConfig()
	c.SectionsOrder = []domain.Section{domain.SectionSale, domain.SectionSale, domain.SectionFeatured, domain.SectionFeatures}
	assert.True(t, domain.IsValidation(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.FinancingOptions.Visa = append(c.FinancingOptions.Visa, domain.FinancingOption{Installments: 3, Interest: 5})
	assert.True(t, domain.IsValidation(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.FinancingOptions.Naranja = []domain.FinancingOption{{Installments: 18, Interest: 50}}
	assert.True(t, domain.IsValidation(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.DollarRateBlue = 0
	assert.True(t, domain.IsValidation(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.WhatsappNumber = "call me"
	assert.True(t, domain.IsValidation(validate.StoreConfig(c)))
}

func TestErrorsNameJSONFields(t *testing.T) {
	field := func(err error) string {
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		return ve.Field
	}

	battery := 120
	assert.Equal(t, "batteryPercentage", field(validate.Product(domain.Product{Name: "x", BatteryPercentage: &battery})))
	assert.Equal(t, "originalPrice", field(validate.Product(domain.Product{Name: "x", IsOnSale: true})))
	assert.Equal(t, "name", field(validate.Product(domain.Product{Name: "   "})))

	c := domain.DefaultStoreConfig()
	c.FinancingOptions.Visa = []domain.FinancingOption{{Installments: 0}}
	assert.Equal(t, "financingOptions.visa[0].installments", field(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.FinancingOptions.Naranja = []domain.FinancingOption{{Installments: 3}, {Installments: 3, Interest: 10}}
	assert.Equal(t, "financingOptions.naranja", field(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.DollarRateMargin = -1
	assert.Equal(t, "dollarRateMargin", field(validate.StoreConfig(c)))

	c = domain.DefaultStoreConfig()
	c.SectionsOrder = []domain.Section{domain.SectionSale}
	assert.Equal(t, "sectionsOrder", field(validate.StoreConfig(c)))
}
