package repos

import (
	"strings"
	"unicode"
)

// Field is an internal (camel case) attribute name. Columns in the store use
// word-separated lowercase names; Column and FieldOf translate between the
// two. Row structs carry no db tags: sqlx resolves them through Column.
type Field string

// Product fields.
const (
	FieldID                 Field = "id"
	FieldName               Field = "name"
	FieldDescription        Field = "description"
	FieldCategory           Field = "category"
	FieldPrice              Field = "price"
	FieldPriceARS           Field = "priceARS"
	FieldOriginalPrice      Field = "originalPrice"
	FieldOriginalPriceARS   Field = "originalPriceARS"
	FieldDiscountPercentage Field = "discountPercentage"
	FieldStock              Field = "stock"
	FieldLowStockThreshold  Field = "lowStockThreshold"
	FieldLastStockAlert     Field = "lastStockAlert"
	FieldIsNew              Field = "isNew"
	FieldIsFeatured         Field = "isFeatured"
	FieldIsOnSale           Field = "isOnSale"
	FieldCondition          Field = "condition"
	FieldColor              Field = "color"
	FieldColors             Field = "colors"
	FieldStorageCapacity    Field = "storageCapacity"
	FieldBatteryPercentage  Field = "batteryPercentage"
	FieldHasAppleWarranty   Field = "hasAppleWarranty"
	FieldImage              Field = "image"
	FieldImages             Field = "images"
	FieldCreatedAt          Field = "createdAt"
	FieldUpdatedAt          Field = "updatedAt"
)

// Config fields.
const (
	FieldStoreName              Field = "storeName"
	FieldStoreDescription       Field = "storeDescription"
	FieldWhatsappNumber         Field = "whatsappNumber"
	FieldDollarRateOfficial     Field = "dollarRateOfficial"
	FieldDollarRateBlue         Field = "dollarRateBlue"
	FieldDollarRateMargin       Field = "dollarRateMargin"
	FieldLastDollarUpdate       Field = "lastDollarUpdate"
	FieldShowFeaturedProducts   Field = "showFeaturedProducts"
	FieldShowFinancingOptions   Field = "showFinancingOptions"
	FieldShowSaleSection        Field = "showSaleSection"
	FieldShowRefurbishedSection Field = "showRefurbishedSection"
	FieldSectionsOrder          Field = "sectionsOrder"
	FieldFinancingOptions       Field = "financingOptions"
)

// Names the store has always used for these fields. Part of the external
// contract; a mechanical transform would not produce some of them.
var columnOverrides = map[Field]string{
	FieldPriceARS:           "price_ars",
	FieldOriginalPriceARS:   "original_price_ars",
	FieldIsFeatured:         "is_featured",
	FieldIsNew:              "is_new",
	FieldIsOnSale:           "is_on_sale",
	FieldHasAppleWarranty:   "has_apple_warranty",
	FieldBatteryPercentage:  "battery_percentage",
	FieldStorageCapacity:    "storage_capacity",
	FieldLowStockThreshold:  "low_stock_threshold",
	FieldLastStockAlert:     "last_stock_alert",
	FieldDiscountPercentage: "discount_percentage",
	FieldOriginalPrice:      "original_price",
	FieldCreatedAt:          "created_at",
	FieldUpdatedAt:          "updated_at",
}

var fieldOverrides = func() map[string]Field {
	m := make(map[string]Field, len(columnOverrides))
	for f, c := range columnOverrides {
		m[c] = f
	}
	return m
}()

// Column maps an internal field to its store column.
func Column(f Field) string {
	if c, ok := columnOverrides[f]; ok {
		return c
	}
	return camelToSnake(string(f))
}

// FieldOf maps a store column back to the internal field.
func FieldOf(column string) Field {
	if f, ok := fieldOverrides[column]; ok {
		return f
	}
	return Field(snakeToCamel(column))
}

// Columns maps a list of fields in order.
func Columns(fields ...Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, Column(f))
	}
	return out
}

// goFieldColumn is the sqlx mapper: Go struct field name -> column.
func goFieldColumn(name string) string {
	return Column(goNameToField(name))
}

// goNameToField lowers the leading letter ("PriceARS" -> "priceARS") or the
// whole name when it is a bare acronym ("ID" -> "id").
func goNameToField(name string) Field {
	if name == "" {
		return ""
	}
	if strings.ToUpper(name) == name {
		return Field(strings.ToLower(name))
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return Field(string(r))
}

func camelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func snakeToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
