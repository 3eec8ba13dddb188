// Package whatsapp builds click-to-chat deep links for customer inquiries.
package whatsapp

import (
	"net/url"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"golang.org/x/text/width"
)

const (
	baseURL     = "https://wa.me/"
	countryCode = "81"
)

// NormalizePhone reduces phone to digits and ensures the Japan country
// code, dropping a domestic trunk 0.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range width.Narrow.String(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + strings.TrimPrefix(digits, "0")
	}
	if len(digits) < 11 || len(digits) > 15 {
		return "", errors.WithMetadata(errors.CodeContactInvalidPhone, "phone number is invalid", map[string]string{"Phone": phone})
	}
	return digits, nil
}

// EncodeMessage query-escapes message with spaces as %20.
func EncodeMessage(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// Link returns the wa.me URL that opens a chat with phone prefilled with message.
func Link(phone string, message string) (string, error) {
	digits, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	link := baseURL + digits
	if message = strings.TrimSpace(message); message != "" {
		link += "?text=" + EncodeMessage(message)
	}
	return link, nil
}

// Builder produces localized inquiry links to the shop's number.
type Builder struct {
	bundle *i18ncatalog.Bundle
	phone  string
}

// NewBuilder binds the shop's phone number and message catalog.
func NewBuilder(bundle *i18ncatalog.Bundle, shopPhone string) *Builder {
	if bundle == nil {
		bundle = i18ncatalog.Default()
	}
	return &Builder{bundle: bundle, phone: shopPhone}
}

// InquiryLink links to the shop with message, or with a localized greeting
// (mentioning orderNumber when given) when message is empty.
func (b *Builder) InquiryLink(locale string, orderNumber string, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		var err error
		message, err = b.defaultMessage(locale, strings.TrimSpace(orderNumber))
		if err != nil {
			return "", err
		}
	}
	return Link(b.phone, message)
}

func (b *Builder) defaultMessage(locale string, orderNumber string) (string, error) {
	greeting, err := b.bundle.Render(locale, "shop.contact.whatsapp_greeting", nil)
	if err != nil {
		return "", err
	}
	if orderNumber == "" {
		return greeting, nil
	}
	about, err := b.bundle.Render(locale, "shop.contact.whatsapp_order", map[string]string{"OrderNumber": orderNumber})
	if err != nil {
		return "", err
	}
	return greeting + " " + about, nil
}
