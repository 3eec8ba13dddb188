// Package coupons manages discount codes.
package coupons

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
)

// CollectionKey is the storage key for coupons.
const CollectionKey = records.KeyPrefix + "coupons"

// Kind selects how Value is applied.
type Kind string

const (
	KindPercent Kind = "percent"
	KindFixed   Kind = "fixed"
)

// Coupon is a discount code.
type Coupon struct {
	records.Meta
	Code        string     `json:"code"`
	Kind        Kind       `json:"kind"`
	Value       int64      `json:"value"`
	MinPurchase int64      `json:"minPurchase"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	UsageLimit  int        `json:"usageLimit"`
	UsedCount   int        `json:"usedCount"`
	Active      bool       `json:"active"`
}

// Validate checks the coupon's shape.
func (c *Coupon) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New(errors.CodeCouponInvalid, "coupon id is required")
	}
	if NormalizeCode(c.Code) == "" {
		return errors.New(errors.CodeCouponInvalid, "coupon code is required")
	}
	switch c.Kind {
	case KindPercent:
		if c.Value <= 0 || c.Value > 100 {
			return errors.New(errors.CodeCouponInvalid, "percent value must be between 1 and 100")
		}
	case KindFixed:
		if c.Value <= 0 {
			return errors.New(errors.CodeCouponInvalid, "fixed value must be positive")
		}
	default:
		return errors.New(errors.CodeCouponInvalid, "unknown coupon kind")
	}
	if c.MinPurchase < 0 || c.UsageLimit < 0 || c.UsedCount < 0 {
		return errors.New(errors.CodeCouponInvalid, "coupon limits must not be negative")
	}
	return nil
}

// Discount returns the yen discount for subtotal, capped at subtotal.
func (c Coupon) Discount(subtotal int64) int64 {
	var discount int64
	switch c.Kind {
	case KindPercent:
		discount = subtotal * c.Value / 100
	case KindFixed:
		discount = c.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// check reports why the coupon cannot apply to subtotal at now.
func (c Coupon) check(subtotal int64, now time.Time) error {
	meta := map[string]string{"Code": c.Code}
	if !c.Active {
		return errors.WithMetadata(errors.CodeCouponInactive, "coupon is inactive", meta)
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return errors.WithMetadata(errors.CodeCouponExpired, "coupon has expired", meta)
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return errors.WithMetadata(errors.CodeCouponExhausted, "coupon usage limit reached", meta)
	}
	if subtotal < c.MinPurchase {
		meta["MinPurchase"] = strconv.FormatInt(c.MinPurchase, 10)
		return errors.WithMetadata(errors.CodeCouponMinPurchase, "subtotal below coupon minimum", meta)
	}
	return nil
}

// NormalizeCode canonicalizes a code for comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Application is the result of applying a coupon to a subtotal.
type Application struct {
	Coupon   Coupon `json:"coupon"`
	Discount int64  `json:"discount"`
}

// Service manages the coupon collection.
type Service struct {
	coupons *records.Collection[Coupon, *Coupon]
}

// NewService binds the service to store.
func NewService(store storage.CollectionStore, opts records.Options) *Service {
	return &Service{coupons: records.NewCollection[Coupon, *Coupon](store, CollectionKey, opts)}
}

// List returns every coupon.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.coupons.All(ctx)
}

// Add stores a new coupon. Codes are unique case-insensitively.
func (s *Service) Add(ctx context.Context, c Coupon) (Coupon, error) {
	c.Code = NormalizeCode(c.Code)
	c.UsedCount = 0
	if _, found, err := s.find(ctx, c.Code); err != nil {
		return Coupon{}, err
	} else if found {
		return Coupon{}, errors.WithMetadata(errors.CodeCouponDuplicate, "coupon code already exists", map[string]string{"Code": c.Code})
	}
	return s.coupons.Add(ctx, c)
}

// Remove deletes a coupon by id.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	return s.coupons.Remove(ctx, id)
}

// Update patches a coupon by id.
func (s *Service) Update(ctx context.Context, id string, patch func(*Coupon) error) (Coupon, bool, error) {
	return s.coupons.Update(ctx, id, func(c *Coupon) error {
		if err := patch(c); err != nil {
			return err
		}
		c.Code = NormalizeCode(c.Code)
		return nil
	})
}

// Apply computes the discount code grants on subtotal at now without
// recording a use.
func (s *Service) Apply(ctx context.Context, code string, subtotal int64, now time.Time) (Application, error) {
	c, found, err := s.find(ctx, code)
	if err != nil {
		return Application{}, err
	}
	if !found {
		return Application{}, errors.WithMetadata(errors.CodeCouponNotFound, "unknown coupon", map[string]string{"Code": NormalizeCode(code)})
	}
	if err := c.check(subtotal, now); err != nil {
		return Application{}, err
	}
	return Application{Coupon: c, Discount: c.Discount(subtotal)}, nil
}

// Redeem records one use of code.
func (s *Service) Redeem(ctx context.Context, code string) (Coupon, error) {
	c, found, err := s.find(ctx, code)
	if err != nil {
		return Coupon{}, err
	}
	if !found {
		return Coupon{}, errors.WithMetadata(errors.CodeCouponNotFound, "unknown coupon", map[string]string{"Code": NormalizeCode(code)})
	}
	updated, found, err := s.coupons.Update(ctx, c.ID, func(c *Coupon) error {
		if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
			return errors.WithMetadata(errors.CodeCouponExhausted, "coupon usage limit reached", map[string]string{"Code": c.Code})
		}
		c.UsedCount++
		return nil
	})
	if err != nil {
		return Coupon{}, err
	}
	if !found {
		return Coupon{}, errors.WithMetadata(errors.CodeCouponNotFound, "unknown coupon", map[string]string{"Code": c.Code})
	}
	return updated, nil
}

func (s *Service) find(ctx context.Context, code string) (Coupon, bool, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Coupon{}, false, nil
	}
	all, err := s.coupons.All(ctx)
	if err != nil {
		return Coupon{}, false, err
	}
	for _, c := range all {
		if NormalizeCode(c.Code) == code {
			return c, true, nil
		}
	}
	return Coupon{}, false, nil
}
