package domain

// Fallback exchange quotes used when no configuration or rate source is reachable.
const (
	DefaultDollarRateOfficial = 1200
	DefaultDollarRateBlue     = 1300
	DefaultDollarRateMargin   = 20
)

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		StoreName:              "Karen Bariloche",
		StoreDescription:       "Tu tienda Apple premium en Bariloche. Productos originales con garantía oficial.",
		WhatsappNumber:         "5492944808071",
		DollarRateOfficial:     DefaultDollarRateOfficial,
		DollarRateBlue:         DefaultDollarRateBlue,
		DollarRateMargin:       DefaultDollarRateMargin,
		ShowFeaturedProducts:   true,
		ShowFinancingOptions:   true,
		ShowSaleSection:        true,
		ShowRefurbishedSection: true,
		SectionsOrder:          append([]Section(nil), AllSections...),
		FinancingOptions: FinancingOptions{
			Visa: []FinancingOption{
				{Installments: 1, Interest: 0},
				{Installments: 3, Interest: 10},
				{Installments: 6, Interest: 20},
				{Installments: 9, Interest: 30},
				{Installments: 12, Interest: 40},
			},
			Naranja: []FinancingOption{
				{Installments: 1, Interest: 0},
				{Installments: 3, Interest: 15},
				{Installments: 6, Interest: 25},
			},
		},
	}
}

// SampleProducts is the built-in catalog served in offline mode. Prices are
// precomputed and are not repriced.
func SampleProducts() []Product {
	orig := 279.0
	origARS := int64(368000)
	discount := 10.0
	return []Product{
		{
			ID:                1,
			Name:              "iPhone 15 Pro",
			Description:       "El iPhone más avanzado con chip A17 Pro",
			Category:          "iPhones",
			Price:             999,
			PriceARS:          1319000,
			Stock:             5,
			LowStockThreshold: DefaultLowStockThreshold,
			IsNew:             true,
			IsFeatured:        true,
			Condition:         ConditionNew,
			StorageCapacity:   "128GB",
			HasAppleWarranty:  true,
			Image:             "/placeholder.svg?height=300&width=300",
		},
		{
			ID:                2,
			Name:              "MacBook Air M2",
			Description:       "Potencia y portabilidad en un diseño ultradelgado",
			Category:          "MacBook",
			Price:             1199,
			PriceARS:          1583000,
			Stock:             3,
			LowStockThreshold: DefaultLowStockThreshold,
			IsNew:             true,
			Condition:         ConditionNew,
			StorageCapacity:   "256GB",
			HasAppleWarranty:  true,
			Image:             "/placeholder.svg?height=300&width=300",
		},
		{
			ID:                 3,
			Name:               "AirPods Pro 2",
			Description:        "Cancelación activa de ruido y audio espacial",
			Category:           "AirPods",
			Price:              249,
			PriceARS:           329000,
			OriginalPrice:      &orig,
			OriginalPriceARS:   &origARS,
			DiscountPercentage: &discount,
			Stock:              10,
			LowStockThreshold:  DefaultLowStockThreshold,
			IsOnSale:           true,
			Condition:          ConditionNew,
			HasAppleWarranty:   true,
			Image:              "/placeholder.svg?height=300&width=300",
		},
	}
}

// Categories offered by the admin product form and storefront filter.
var Categories = []string{"iPhones", "MacBook", "iPad", "Apple Watch", "AirPods", "Accesorios"}
