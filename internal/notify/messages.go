// Package notify builds WhatsApp messages and deep links and dispatches
// them asynchronously.
package notify

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"applestore/internal/domain"
)

var esAR = message.NewPrinter(language.MustParse("es-AR"))

// FormatARS groups thousands the way Argentine prices are written: 1.318.680.
func FormatARS(n int64) string {
	return esAR.Sprintf("%d", n)
}

// FormatUSD drops a trailing ".0" from whole prices.
func FormatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// AlertItem is one line of a low-stock alert.
type AlertItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	Threshold int    `json:"threshold"`
}

func AlertItemFor(p domain.Product) AlertItem {
	return AlertItem{ID: p.ID, Name: p.Name, Stock: p.Stock, Threshold: p.Threshold()}
}

// AlertMessage formats the low-stock alert sent to the store owner.
func AlertMessage(items []AlertItem) string {
	var b strings.Builder
	b.WriteString("🚨 *ALERTA DE STOCK BAJO* 🚨\n\n")
	b.WriteString("Los siguientes productos están por debajo del umbral de stock:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "• *%s*\n", it.Name)
		fmt.Fprintf(&b, "  - Stock actual: %d\n", it.Stock)
		fmt.Fprintf(&b, "  - Umbral: %d\n", it.Threshold)
		fmt.Fprintf(&b, "  - ID: %d\n\n", it.ID)
	}
	b.WriteString("Por favor, actualice el inventario o elimine estos productos.")
	return b.String()
}

// InquiryMessage is the customer's opening message for a product.
func InquiryMessage(p domain.Product, storeName string) string {
	return fmt.Sprintf("Hola, estoy interesado en el %s que vi en %s. ¿Me podrías dar más información?", p.Name, storeName)
}

// FinancingInquiryMessage asks about installment plans for a product.
func FinancingInquiryMessage(p domain.Product) string {
	return "Hola, me interesa conocer más sobre las opciones de financiación para el " + p.Name
}

func conditionText(c domain.Condition) string {
	switch c {
	case domain.ConditionNew:
		return "Nuevo"
	case domain.ConditionRefurbished:
		return "Reacondicionado"
	}
	return "Usado"
}

// ProductSheet is the product summary the admin shares with customers.
func ProductSheet(p domain.Product, note string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", p.Name)

	b.WriteString("📱 *Características:*\n")
	fmt.Fprintf(&b, "• Categoría: %s\n", p.Category)
	if p.StorageCapacity != "" {
		fmt.Fprintf(&b, "• Capacidad: %s\n", p.StorageCapacity)
	}
	if p.Color != "" {
		fmt.Fprintf(&b, "• Color: %s\n", p.Color)
	}
	if p.Condition != "" {
		fmt.Fprintf(&b, "• Condición: %s\n", conditionText(p.Condition))
		if p.Condition != domain.ConditionNew {
			if p.BatteryPercentage != nil && *p.BatteryPercentage > 0 {
				fmt.Fprintf(&b, "• Batería: %d%%\n", *p.BatteryPercentage)
			}
			warranty := "No"
			if p.HasAppleWarranty {
				warranty = "Sí"
			}
			fmt.Fprintf(&b, "• Garantía Apple: %s\n", warranty)
		}
	}

	b.WriteString("\n💰 *Precio:*\n")
	if p.IsOnSale && p.OriginalPriceARS != nil {
		fmt.Fprintf(&b, "• Antes: $%s\n", FormatARS(*p.OriginalPriceARS))
		pct := 0.0
		if p.DiscountPercentage != nil {
			pct = *p.DiscountPercentage
		}
		fmt.Fprintf(&b, "• Ahora: $%s (%s%% OFF)\n", FormatARS(p.PriceARS), FormatUSD(pct))
	} else {
		fmt.Fprintf(&b, "• $%s\n", FormatARS(p.PriceARS))
	}
	fmt.Fprintf(&b, "• USD %s\n", FormatUSD(p.Price))

	b.WriteString("\n📦 *Stock:*\n")
	fmt.Fprintf(&b, "• %d unidades disponibles\n", p.Stock)

	if note = strings.TrimSpace(note); note != "" {
		fmt.Fprintf(&b, "\n📝 *Nota:*\n%s\n", note)
	}
	return b.String()
}
