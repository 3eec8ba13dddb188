package api

import (
	platformi18n "github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/storefront/cart"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"golang.org/x/text/language"
)

// money is a yen amount with its localized display form.
type money struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

func yen(tag language.Tag, amount int64) money {
	return money{Amount: amount, Display: platformi18n.FormatYen(tag, amount)}
}

type sizePrices struct {
	Small money `json:"small"`
	Large money `json:"large"`
}

type productView struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	LocalName     string           `json:"localName"`
	DisplayName   string           `json:"displayName"`
	Category      catalog.Category `json:"category"`
	CategoryLabel string           `json:"categoryLabel"`
	Flavor        string           `json:"flavor"`
	Image         string           `json:"image"`
	Prices        sizePrices       `json:"prices"`
}

type cartItemView struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	Size      catalog.Size `json:"size"`
	SizeLabel string       `json:"sizeLabel"`
	Quantity  int          `json:"quantity"`
	UnitPrice money        `json:"unitPrice"`
	Subtotal  money        `json:"subtotal"`
}

type cartView struct {
	Items      []cartItemView  `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPrice money           `json:"totalPrice"`
	Space      cart.SpaceUsage `json:"space"`
	Boxes      []string        `json:"boxes"`
}

type quoteView struct {
	shipping.Quote
	CarrierLabel string `json:"carrierLabel"`
	PriceDisplay string `json:"priceDisplay"`
}

func (h *Handler) label(tag language.Tag, key string, fallback string) string {
	if msg, ok := h.deps.Bundle.Message(platformi18n.LocaleString(tag), key); ok && msg != "" {
		return msg
	}
	return fallback
}

func (h *Handler) productView(tag language.Tag, p catalog.Product) productView {
	display := p.Name
	if base, _ := tag.Base(); base.String() == "ja" && p.LocalName != "" {
		display = p.LocalName
	}
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		LocalName:     p.LocalName,
		DisplayName:   display,
		Category:      p.Category,
		CategoryLabel: h.label(tag, "shop.product.category."+string(p.Category), string(p.Category)),
		Flavor:        p.Flavor,
		Image:         p.Image,
		Prices: sizePrices{
			Small: yen(tag, p.Prices.Small),
			Large: yen(tag, p.Prices.Large),
		},
	}
}

func (h *Handler) cartView(tag language.Tag, snap cart.Snapshot) cartView {
	items := make([]cartItemView, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, cartItemView{
			ProductID: item.Product.ID,
			Name:      h.productView(tag, item.Product).DisplayName,
			Size:      item.Size,
			SizeLabel: h.label(tag, "shop.product.size."+string(item.Size), string(item.Size)),
			Quantity:  item.Quantity,
			UnitPrice: yen(tag, item.Product.Price(item.Size)),
			Subtotal:  yen(tag, item.Subtotal()),
		})
	}
	return cartView{
		Items:      items,
		TotalItems: snap.Totals.Items,
		TotalPrice: yen(tag, snap.Totals.Price),
		Space:      snap.Space,
		Boxes:      boxSizes(snap.Space.TotalSmallEquivalent),
	}
}

func (h *Handler) quoteView(tag language.Tag, q shipping.Quote) quoteView {
	return quoteView{
		Quote:        q,
		CarrierLabel: h.label(tag, "shop.shipping.carrier."+q.Carrier, q.Carrier),
		PriceDisplay: platformi18n.FormatYen(tag, q.Price),
	}
}

func boxSizes(units int) []string {
	boxes := shipping.PackBoxes(units)
	sizes := make([]string, 0, len(boxes))
	for _, box := range boxes {
		sizes = append(sizes, box.Size)
	}
	return sizes
}
