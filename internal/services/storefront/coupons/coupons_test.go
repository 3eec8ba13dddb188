package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage/memory"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.May, 10, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.New(), records.Options{Clock: func() time.Time { return now }})
}

func TestDiscount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		coupon   Coupon
		subtotal int64
		want     int64
	}{
		{name: "percent", coupon: Coupon{Kind: KindPercent, Value: 10}, subtotal: 4400, want: 440},
		{name: "percent rounds down", coupon: Coupon{Kind: KindPercent, Value: 15}, subtotal: 1299, want: 194},
		{name: "fixed", coupon: Coupon{Kind: KindFixed, Value: 500}, subtotal: 4400, want: 500},
		{name: "fixed capped", coupon: Coupon{Kind: KindFixed, Value: 5000}, subtotal: 4400, want: 4400},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, tc.coupon.Discount(tc.subtotal), tc.name)
	}
}

func TestAddNormalizesAndRejectsDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)

	added, err := svc.Add(ctx, Coupon{Code: " welcome10 ", Kind: KindPercent, Value: 10, Active: true, UsedCount: 7})
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", added.Code)
	require.Equal(t, 0, added.UsedCount)
	require.NotEmpty(t, added.ID)

	_, err = svc.Add(ctx, Coupon{Code: "Welcome10", Kind: KindFixed, Value: 100, Active: true})
	require.True(t, errors.HasCode(err, errors.CodeCouponDuplicate), "err = %v", err)

	_, err = svc.Add(ctx, Coupon{Code: "BAD", Kind: KindPercent, Value: 120})
	require.True(t, errors.HasCode(err, errors.CodeCouponInvalid), "err = %v", err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestApply(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)
	past := now.Add(-time.Hour)

	for _, c := range []Coupon{
		{Code: "TENOFF", Kind: KindPercent, Value: 10, Active: true},
		{Code: "OFF", Kind: KindFixed, Value: 300, Active: false},
		{Code: "OLD", Kind: KindFixed, Value: 300, Active: true, ExpiresAt: &past},
		{Code: "ONCE", Kind: KindFixed, Value: 300, Active: true, UsageLimit: 1},
		{Code: "BIG", Kind: KindFixed, Value: 1000, Active: true, MinPurchase: 5000},
	} {
		_, err := svc.Add(ctx, c)
		require.NoError(t, err)
	}
	_, err := svc.Redeem(ctx, "once")
	require.NoError(t, err)

	app, err := svc.Apply(ctx, "tenoff", 4400, now)
	require.NoError(t, err)
	require.Equal(t, int64(440), app.Discount)
	require.Equal(t, "TENOFF", app.Coupon.Code)

	tests := []struct {
		code string
		want errors.Code
	}{
		{code: "NOPE", want: errors.CodeCouponNotFound},
		{code: "OFF", want: errors.CodeCouponInactive},
		{code: "OLD", want: errors.CodeCouponExpired},
		{code: "ONCE", want: errors.CodeCouponExhausted},
		{code: "BIG", want: errors.CodeCouponMinPurchase},
	}
	for _, tc := range tests {
		_, err := svc.Apply(ctx, tc.code, 4400, now)
		require.True(t, errors.HasCode(err, tc.want), "%s: err = %v, want %s", tc.code, err, tc.want)
	}

	_, err = svc.Apply(ctx, "BIG", 4400, now)
	var domainErr *errors.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "5000", domainErr.Metadata["MinPurchase"])
}

func TestRedeemIncrementsUntilLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)
	_, err := svc.Add(ctx, Coupon{Code: "TWICE", Kind: KindFixed, Value: 100, Active: true, UsageLimit: 2})
	require.NoError(t, err)

	first, err := svc.Redeem(ctx, "TWICE")
	require.NoError(t, err)
	require.Equal(t, 1, first.UsedCount)

	second, err := svc.Redeem(ctx, "twice")
	require.NoError(t, err)
	require.Equal(t, 2, second.UsedCount)

	_, err = svc.Redeem(ctx, "TWICE")
	require.True(t, errors.HasCode(err, errors.CodeCouponExhausted), "err = %v", err)

	_, err = svc.Redeem(ctx, "MISSING")
	require.True(t, errors.HasCode(err, errors.CodeCouponNotFound), "err = %v", err)
}

func TestUpdateAndRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)
	added, err := svc.Add(ctx, Coupon{Code: "SPRING", Kind: KindFixed, Value: 200, Active: true})
	require.NoError(t, err)

	updated, found, err := svc.Update(ctx, added.ID, func(c *Coupon) error {
		c.Active = false
		c.Code = "spring26"
		return nil
	})
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, updated.Active)
	require.Equal(t, "SPRING26", updated.Code)

	removed, err := svc.Remove(ctx, added.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = svc.Remove(ctx, added.ID)
	require.NoError(t, err)
	require.False(t, removed)
}
