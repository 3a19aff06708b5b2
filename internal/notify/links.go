package notify

import (
	"net/url"
	"strings"
)

const (
	alertBase   = "https://api.whatsapp.com/send"
	inquiryBase = "https://wa.me/"
)

// uriComponent undoes the QueryEscape choices encodeURIComponent does not make.
var uriComponent = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeText escapes like a browser's encodeURIComponent.
func encodeText(s string) string {
	return uriComponent.Replace(url.QueryEscape(s))
}

func digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AlertLink opens a chat with the store owner prefilled with text.
func AlertLink(phone, text string) string {
	return alertBase + "?phone=" + digits(phone) + "&text=" + encodeText(text)
}

// InquiryLink opens a customer chat with the store prefilled with text.
func InquiryLink(phone, text string) string {
	if text == "" {
		return inquiryBase + digits(phone)
	}
	return inquiryBase + digits(phone) + "?text=" + encodeText(text)
}
