// Package api exposes the storefront over JSON/HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/storefront/internal/platform/i18n/catalog"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"github.com/louisbranch/storefront/internal/services/shared/i18nhttp"
	"github.com/louisbranch/storefront/internal/services/shared/route"
	"github.com/louisbranch/storefront/internal/services/storefront/cart"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/checkout"
	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/postal"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/whatsapp"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/platform/httpx"
	"github.com/louisbranch/storefront/internal/services/storefront/reviews"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"github.com/louisbranch/storefront/internal/services/storefront/wishlist"
	"go.uber.org/zap"
)

// PostalLookup resolves postal codes to addresses.
type PostalLookup interface {
	Lookup(ctx context.Context, code string) (postal.Address, error)
}

// Deps are the services the API serves.
type Deps struct {
	Catalog    *catalog.Catalog
	Carts      *cart.Sessions
	Shipping   *shipping.Calculator
	Coupons    *coupons.Service
	Orders     *orders.Service
	Reviews    *reviews.Service
	Wishlists  *wishlist.Service
	Checkout   *checkout.Service
	Postal     PostalLookup
	Contact    *whatsapp.Builder
	Bundle     *i18ncatalog.Bundle
	Sessions   *Sessions
	AdminToken string
	Logger     *zap.Logger
	Clock      func() time.Time
}

func (d Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return fmt.Errorf("catalog is required")
	case d.Carts == nil:
		return fmt.Errorf("cart sessions are required")
	case d.Shipping == nil:
		return fmt.Errorf("shipping calculator is required")
	case d.Coupons == nil, d.Orders == nil, d.Reviews == nil, d.Wishlists == nil:
		return fmt.Errorf("record services are required")
	case d.Checkout == nil:
		return fmt.Errorf("checkout service is required")
	case d.Postal == nil:
		return fmt.Errorf("postal lookup is required")
	case d.Contact == nil:
		return fmt.Errorf("contact link builder is required")
	case d.Sessions == nil:
		return fmt.Errorf("session signer is required")
	}
	return nil
}

// Handler serves the storefront API.
type Handler struct {
	deps Deps
}

// New builds the API handler with its middleware stack.
func New(deps Deps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Bundle == nil {
		deps.Bundle = i18ncatalog.Default()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	h := &Handler{deps: deps}

	mux := http.NewServeMux()
	h.registerRoutes(mux)
	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.Trace(nil, "storefront/api"),
		httpx.AccessLog(deps.Logger),
		httpx.RecoverPanic(deps.Logger),
		route.Canonical,
		i18nhttp.Middleware,
		deps.Sessions.Middleware,
		httpx.Timeout(timeouts.Request),
	), nil
}

func (h *Handler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/messages", h.messages)

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.listReviews)
	mux.HandleFunc("POST /api/products/{id}/reviews", h.addReview)
	mux.HandleFunc("GET /api/products/{id}/rating", h.productRating)
	mux.HandleFunc("GET /api/prefectures", h.listPrefectures)

	mux.HandleFunc("POST /api/session", h.startSession)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/items/{productID}/{size}", h.setCartQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{productID}/{size}", h.removeCartItem)

	mux.HandleFunc("GET /api/shipping/quotes", h.shippingQuotes)
	mux.HandleFunc("GET /api/postal/{code}", h.postalLookup)
	mux.HandleFunc("POST /api/coupons/validate", h.validateCoupon)
	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/orders", h.myOrders)

	mux.HandleFunc("GET /api/wishlist", h.getWishlist)
	mux.HandleFunc("POST /api/wishlist", h.addWishlist)
	mux.HandleFunc("DELETE /api/wishlist/{id}", h.removeWishlist)

	mux.HandleFunc("GET /api/contact/whatsapp", h.whatsappLink)

	admin := func(next http.HandlerFunc) http.HandlerFunc { return requireAdmin(h.deps.AdminToken, next) }
	mux.HandleFunc("GET /api/admin/coupons", admin(h.adminListCoupons))
	mux.HandleFunc("POST /api/admin/coupons", admin(h.adminAddCoupon))
	mux.HandleFunc("PATCH /api/admin/coupons/{id}", admin(h.adminUpdateCoupon))
	mux.HandleFunc("DELETE /api/admin/coupons/{id}", admin(h.adminRemoveCoupon))
	mux.HandleFunc("GET /api/admin/orders", admin(h.adminListOrders))
	mux.HandleFunc("GET /api/admin/orders/stats", admin(h.adminOrderStats))
	mux.HandleFunc("PATCH /api/admin/orders/{id}", admin(h.adminUpdateOrder))
	mux.HandleFunc("DELETE /api/admin/reviews/{id}", admin(h.adminRemoveReview))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) identity(r *http.Request) Identity {
	identity, _ := IdentityFromContext(r.Context())
	return identity
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := httpx.WriteJSON(w, status, payload); err != nil {
		h.deps.Logger.Warn("write response failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		h.deps.Logger.Error("request failed",
			zap.String("request_id", requestctx.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, r, err)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, err)
}
