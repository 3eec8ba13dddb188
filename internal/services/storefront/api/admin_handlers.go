package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/pagination"
	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/platform/httpx"
)

func (h *Handler) adminListCoupons(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.Coupons.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

type couponInput struct {
	Code        string     `json:"code"`
	Kind        string     `json:"kind"`
	Value       int64      `json:"value"`
	MinPurchase int64      `json:"minPurchase"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	UsageLimit  int        `json:"usageLimit"`
	Active      *bool      `json:"active,omitempty"`
}

func (h *Handler) adminAddCoupon(w http.ResponseWriter, r *http.Request) {
	var in couponInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	added, err := h.deps.Coupons.Add(r.Context(), coupons.Coupon{
		Code:        in.Code,
		Kind:        coupons.Kind(strings.ToLower(strings.TrimSpace(in.Kind))),
		Value:       in.Value,
		MinPurchase: in.MinPurchase,
		ExpiresAt:   in.ExpiresAt,
		UsageLimit:  in.UsageLimit,
		Active:      active,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, added)
}

type couponPatch struct {
	Kind         *string    `json:"kind,omitempty"`
	Value        *int64     `json:"value,omitempty"`
	MinPurchase  *int64     `json:"minPurchase,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	ClearExpires bool       `json:"clearExpires,omitempty"`
	UsageLimit   *int       `json:"usageLimit,omitempty"`
	Active       *bool      `json:"active,omitempty"`
}

func (p couponPatch) apply(c *coupons.Coupon) error {
	if p.Kind != nil {
		c.Kind = coupons.Kind(strings.ToLower(strings.TrimSpace(*p.Kind)))
	}
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.MinPurchase != nil {
		c.MinPurchase = *p.MinPurchase
	}
	if p.ClearExpires {
		c.ExpiresAt = nil
	} else if p.ExpiresAt != nil {
		c.ExpiresAt = p.ExpiresAt
	}
	if p.UsageLimit != nil {
		c.UsageLimit = *p.UsageLimit
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	return nil
}

func (h *Handler) adminUpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var patch couponPatch
	if err := httpx.DecodeJSON(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	updated, found, err := h.deps.Coupons.Update(r.Context(), r.PathValue("id"), patch.apply)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		h.fail(w, r, errors.New(errors.CodeCouponNotFound, "coupon not found"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) adminRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.Coupons.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, errors.New(errors.CodeCouponNotFound, "coupon not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var (
	orderPageSize = pagination.PageSizeConfig{Default: 50, Max: 200}
	orderOrderBy  = pagination.OrderByConfig{Default: "created_at", Allowed: []string{"created_at", "total"}}
)

type orderPage struct {
	Orders        []orders.Order `json:"orders"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize, err := pagination.ParsePageSize(query.Get("page_size"), orderPageSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	orderBy, err := pagination.NormalizeOrderBy(query.Get("order_by"), orderOrderBy)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := pagination.DecodeToken(query.Get("page_token"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	list, err := h.deps.Orders.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if value := query.Get("status"); value != "" {
		status, ok := orders.ParseStatus(value)
		if !ok {
			h.fail(w, r, errors.WithMetadata(errors.CodeOrderInvalidStatus, "unknown status", map[string]string{"Status": value}))
			return
		}
		filtered := []orders.Order{}
		for _, o := range list {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		list = filtered
	}

	// Newest first; total ties fall back to the creation order.
	sort.SliceStable(list, func(i, j int) bool {
		if orderBy == "total" && list[i].Total != list[j].Total {
			return list[i].Total > list[j].Total
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	page, next := pagination.Slice(list, offset, pageSize)
	h.writeJSON(w, r, http.StatusOK, orderPage{Orders: page, NextPageToken: next})
}

func (h *Handler) adminOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.deps.Orders.Statistics(r.Context(), h.deps.Clock())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, stats)
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) adminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	status, ok := orders.ParseStatus(req.Status)
	if !ok {
		h.fail(w, r, errors.WithMetadata(errors.CodeOrderInvalidStatus, "unknown status", map[string]string{"Status": req.Status}))
		return
	}
	updated, found, err := h.deps.Orders.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !found {
		h.fail(w, r, errors.New(errors.CodeOrderNotFound, "order not found"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) adminRemoveReview(w http.ResponseWriter, r *http.Request) {
	removed, err := h.deps.Reviews.Remove(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, errors.New(errors.CodeNotFound, "review not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
