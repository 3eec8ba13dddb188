package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
	platformi18n "github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/shared/i18nhttp"
	"github.com/louisbranch/storefront/internal/services/storefront/cart"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/platform/httpx"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
)

type sessionRequest struct {
	CustomerID string `json:"customerId"`
}

// startSession binds the current browsing session to a customer id, or
// back to a guest when the id is empty. The cart is kept.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	identity := h.identity(r)
	identity.CustomerID = strings.TrimSpace(req.CustomerID)
	if err := h.deps.Sessions.Start(w, identity); err != nil {
		h.fail(w, r, errors.Wrap(errors.CodeUnknown, "start session", err))
		return
	}
	h.writeJSON(w, r, http.StatusOK, identity)
}

func (h *Handler) sessionCart(r *http.Request) *cart.Cart {
	return h.deps.Carts.Get(h.identity(r).SessionID)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart) {
	h.writeJSON(w, r, http.StatusOK, h.cartView(i18nhttp.TagFromContext(r.Context()), c.Snapshot()))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, h.sessionCart(r))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c := h.sessionCart(r)
	c.Clear()
	h.respondCart(w, r, c)
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) lineTarget(productID, sizeName string) (catalog.Product, catalog.Size, error) {
	p, ok := h.deps.Catalog.Product(productID)
	if !ok {
		return catalog.Product{}, "", errors.WithMetadata(errors.CodeProductNotFound, "unknown product", map[string]string{"Product": productID})
	}
	size, ok := catalog.ParseSize(sizeName)
	if !ok {
		return catalog.Product{}, "", errors.WithMetadata(errors.CodeProductInvalidSize, "unknown size", map[string]string{"Size": sizeName})
	}
	return p, size, nil
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := cart.ValidateQuantity(req.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	p, size, err := h.lineTarget(req.ProductID, req.Size)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c := h.sessionCart(r)
	if err := c.Add(p, size, req.Quantity); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondCart(w, r, c)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// setCartQuantity sets a line's quantity; zero or less removes the line.
func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity > cart.MaxLineQuantity {
		h.fail(w, r, cart.ValidateQuantity(req.Quantity))
		return
	}
	p, size, err := h.lineTarget(r.PathValue("productID"), r.PathValue("size"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c := h.sessionCart(r)
	if !c.SetQuantity(p.ID, size, req.Quantity) {
		h.fail(w, r, errors.New(errors.CodeCartItemNotFound, "item not in cart"))
		return
	}
	h.respondCart(w, r, c)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	p, size, err := h.lineTarget(r.PathValue("productID"), r.PathValue("size"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c := h.sessionCart(r)
	if !c.Remove(p.ID, size) {
		h.fail(w, r, errors.New(errors.CodeCartItemNotFound, "item not in cart"))
		return
	}
	h.respondCart(w, r, c)
}

type quotesResponse struct {
	Prefecture catalog.Prefecture `json:"prefecture"`
	Units      int                `json:"units"`
	Boxes      []string           `json:"boxes"`
	Quotes     []quoteView        `json:"quotes"`
}

// shippingQuotes prices the explicit small/large counts, or the session
// cart when neither is given.
func (h *Handler) shippingQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	tag := i18nhttp.TagFromContext(r.Context())

	var units int
	if query.Has("small") || query.Has("large") {
		small, err := countParam(query.Get("small"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		large, err := countParam(query.Get("large"))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		units = small*catalog.SizeSmall.Units() + large*catalog.SizeLarge.Units()
	} else {
		units = h.sessionCart(r).SpaceUsed().TotalSmallEquivalent
	}

	prefecture := query.Get("prefecture")
	quotes, err := h.deps.Shipping.Quotes(r.Context(), units, prefecture, platformi18n.LocaleString(tag))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// Empty shipments are quoted without resolving the prefecture.
	pref, _ := h.deps.Shipping.Zone(prefecture)
	views := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, h.quoteView(tag, q))
	}
	h.writeJSON(w, r, http.StatusOK, quotesResponse{
		Prefecture: pref,
		Units:      units,
		Boxes:      boxSizes(units),
		Quotes:     views,
	})
}

func countParam(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > shipping.MaxUnits {
		return 0, errors.WithMetadata(errors.CodeInvalidRequest, "count out of range", map[string]string{
			"Value": value,
			"Max":   strconv.Itoa(shipping.MaxUnits),
		})
	}
	return n, nil
}
