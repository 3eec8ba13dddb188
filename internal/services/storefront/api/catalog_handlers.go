package api

import (
	"net/http"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
	platformi18n "github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/shared/i18nhttp"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/platform/httpx"
	"github.com/louisbranch/storefront/internal/services/storefront/reviews"
	"golang.org/x/text/language"
)

type messagesResponse struct {
	Locale    string                    `json:"locale"`
	Messages  map[string]string         `json:"messages"`
	Languages []i18nhttp.LanguageOption `json:"languages"`
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	tag := i18nhttp.TagFromContext(r.Context())
	locale := platformi18n.LocaleString(tag)
	languages := i18nhttp.BuildLanguageOptions(i18nhttp.Supported(), locale, func(option language.Tag) string {
		return h.label(tag, i18nhttp.LanguageKeyLabel(option), option.String())
	})
	h.writeJSON(w, r, http.StatusOK, messagesResponse{
		Locale:    locale,
		Messages:  h.deps.Bundle.Messages(locale),
		Languages: languages,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	tag := i18nhttp.TagFromContext(r.Context())
	category := catalog.Category(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))))
	switch category {
	case "", catalog.CategoryStandard, catalog.CategoryPremium:
	default:
		h.fail(w, r, errors.WithMetadata(errors.CodeInvalidRequest, "unknown category", map[string]string{"Category": string(category)}))
		return
	}
	products := h.deps.Catalog.Products(category)
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, h.productView(tag, p))
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

func (h *Handler) product(r *http.Request) (catalog.Product, error) {
	productID := r.PathValue("id")
	p, ok := h.deps.Catalog.Product(productID)
	if !ok {
		return catalog.Product{}, errors.WithMetadata(errors.CodeProductNotFound, "unknown product", map[string]string{"Product": productID})
	}
	return p, nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.productView(i18nhttp.TagFromContext(r.Context()), p))
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.deps.Reviews.ForProduct(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

type reviewRequest struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) addReview(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req reviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	added, err := h.deps.Reviews.Add(r.Context(), reviews.Review{
		ProductID:  p.ID,
		CustomerID: h.identity(r).CustomerID,
		Author:     strings.TrimSpace(req.Author),
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, added)
}

func (h *Handler) productRating(w http.ResponseWriter, r *http.Request) {
	p, err := h.product(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rating, err := h.deps.Reviews.Rating(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, rating)
}

func (h *Handler) listPrefectures(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.deps.Catalog.Prefectures())
}
