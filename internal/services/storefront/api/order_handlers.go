package api

import (
	"net/http"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
	platformi18n "github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/shared/i18nhttp"
	"github.com/louisbranch/storefront/internal/services/storefront/checkout"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/payment"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/platform/httpx"
	"github.com/louisbranch/storefront/internal/services/storefront/wishlist"
)

func (h *Handler) postalLookup(w http.ResponseWriter, r *http.Request) {
	address, err := h.deps.Postal.Lookup(r.Context(), r.PathValue("code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, address)
}

type couponRequest struct {
	Code     string `json:"code"`
	Subtotal *int64 `json:"subtotal,omitempty"`
}

type couponResponse struct {
	Code     string `json:"code"`
	Subtotal money  `json:"subtotal"`
	Discount money  `json:"discount"`
	Total    money  `json:"total"`
}

// validateCoupon previews a coupon against the given subtotal, or the
// session cart's subtotal, without redeeming it.
func (h *Handler) validateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	subtotal := h.sessionCart(r).Totals().Price
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	if subtotal < 0 {
		h.fail(w, r, errors.New(errors.CodeInvalidRequest, "subtotal must not be negative"))
		return
	}
	applied, err := h.deps.Coupons.Apply(r.Context(), req.Code, subtotal, h.deps.Clock())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tag := i18nhttp.TagFromContext(r.Context())
	h.writeJSON(w, r, http.StatusOK, couponResponse{
		Code:     applied.Coupon.Code,
		Subtotal: yen(tag, subtotal),
		Discount: yen(tag, applied.Discount),
		Total:    yen(tag, subtotal-applied.Discount),
	})
}

type checkoutRequest struct {
	Prefecture string         `json:"prefecture"`
	Carrier    string         `json:"carrier"`
	CouponCode string         `json:"couponCode"`
	Customer   orders.Contact `json:"customer"`
	Address    orders.Address `json:"address"`
}

type checkoutResponse struct {
	Order    orders.Order   `json:"order"`
	Shipping quoteView      `json:"shipping"`
	Payment  payment.Result `json:"payment"`
	Subtotal money          `json:"subtotal"`
	Discount money          `json:"discount"`
	Total    money          `json:"total"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	identity := h.identity(r)
	tag := i18nhttp.TagFromContext(r.Context())
	result, err := h.deps.Checkout.Checkout(r.Context(), checkout.Request{
		SessionID:  identity.SessionID,
		CustomerID: identity.Owner(),
		Prefecture: req.Prefecture,
		Carrier:    req.Carrier,
		CouponCode: req.CouponCode,
		Customer:   req.Customer,
		Address:    req.Address,
		Locale:     platformi18n.LocaleString(tag),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, checkoutResponse{
		Order:    result.Order,
		Shipping: h.quoteView(tag, result.Quote),
		Payment:  result.Payment,
		Subtotal: yen(tag, result.Order.Subtotal),
		Discount: yen(tag, result.Order.Discount),
		Total:    yen(tag, result.Order.Total),
	})
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	identity := h.identity(r)
	list, err := h.deps.Orders.ForCustomer(r.Context(), identity.Owner(), identity.SessionID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

type wishlistItemView struct {
	wishlist.Entry
	Product *productView `json:"product,omitempty"`
}

func (h *Handler) wishlist(r *http.Request) (*wishlist.List, error) {
	return h.deps.Wishlists.For(h.identity(r).Owner())
}

func (h *Handler) getWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlist(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := list.Entries(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	tag := i18nhttp.TagFromContext(r.Context())
	views := make([]wishlistItemView, 0, len(entries))
	for _, entry := range entries {
		view := wishlistItemView{Entry: entry}
		if p, ok := h.deps.Catalog.Product(entry.ProductID); ok {
			pv := h.productView(tag, p)
			view.Product = &pv
		}
		views = append(views, view)
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

type wishlistRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) addWishlist(w http.ResponseWriter, r *http.Request) {
	var req wishlistRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, ok := h.deps.Catalog.Product(req.ProductID)
	if !ok {
		h.fail(w, r, errors.WithMetadata(errors.CodeProductNotFound, "unknown product", map[string]string{"Product": req.ProductID}))
		return
	}
	list, err := h.wishlist(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := list.Add(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, entry)
}

// removeWishlist accepts either an entry id or a product id.
func (h *Handler) removeWishlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.wishlist(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target := r.PathValue("id")
	removed, err := list.Remove(r.Context(), target)
	if err == nil && !removed {
		removed, err = list.RemoveProduct(r.Context(), target)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, errors.New(errors.CodeNotFound, "wishlist entry not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) whatsappLink(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	locale := platformi18n.LocaleString(i18nhttp.TagFromContext(r.Context()))
	link, err := h.deps.Contact.InquiryLink(locale, strings.TrimSpace(query.Get("order")), query.Get("message"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"url": link})
}
