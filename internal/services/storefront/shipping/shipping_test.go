package shipping

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/stretchr/testify/require"
)

func TestSelectBoxBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		units int
		want  string
		ok    bool
	}{
		{units: 0, ok: false},
		{units: 1, want: "60", ok: true},
		{units: 4, want: "60", ok: true},
		{units: 5, want: "80", ok: true},
		{units: 6, want: "80", ok: true},
		{units: 7, want: "100", ok: true},
		{units: 12, want: "100", ok: true},
		{units: 13, ok: false},
	}
	for _, tc := range tests {
		box, ok := SelectBox(tc.units)
		require.Equal(t, tc.ok, ok, "units=%d", tc.units)
		require.Equal(t, tc.want, box.Size, "units=%d", tc.units)
	}
}

func TestPackBoxes(t *testing.T) {
	t.Parallel()

	sizes := func(boxes []Box) []string {
		out := []string{}
		for _, b := range boxes {
			out = append(out, b.Size)
		}
		return out
	}

	tests := []struct {
		units int
		want  []string
	}{
		{units: 0, want: []string{}},
		{units: 4, want: []string{"60"}},
		{units: 12, want: []string{"100"}},
		{units: 13, want: []string{"100", "60"}},
		{units: 18, want: []string{"100", "80"}},
		{units: 19, want: []string{"100", "100"}},
		{units: 30, want: []string{"100", "100", "80"}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, sizes(PackBoxes(tc.units))); diff != "" {
			t.Fatalf("PackBoxes(%d) mismatch (-want +got):\n%s", tc.units, diff)
		}
	}
}

func TestPackBoxesCoversUnitsWithMinimalCount(t *testing.T) {
	t.Parallel()

	for units := 1; units <= 100; units++ {
		boxes := PackBoxes(units)
		capacity := 0
		for _, box := range boxes {
			capacity += box.Capacity
		}
		require.GreaterOrEqual(t, capacity, units, "units=%d", units)
		require.Len(t, boxes, (units+MaxBoxCapacity-1)/MaxBoxCapacity, "units=%d", units)
	}
}

func TestPackRejectsUnitsAboveLimit(t *testing.T) {
	t.Parallel()

	packing, err := Pack(MaxUnits)
	require.NoError(t, err)
	require.Equal(t, Packing{Full: MaxUnits/MaxBoxCapacity - 1, Rest: Boxes[len(Boxes)-1], HasRest: true}, packing)
	require.Equal(t, MaxUnits/MaxBoxCapacity, packing.Count())

	for _, units := range []int{MaxUnits + 1, 120000000, math.MaxInt} {
		_, err := Pack(units)
		require.True(t, errors.HasCode(err, errors.CodeShippingTooLarge), "units=%d err=%v", units, err)
		require.Nil(t, PackBoxes(units), "units=%d", units)
	}
}

func TestQuotesPriceFullBoxesByCount(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	quote, err := calc.Quote(context.Background(), "yamato", MaxUnits, "Tokyo", "en-US")
	require.NoError(t, err)
	require.Equal(t, int64(MaxUnits/MaxBoxCapacity)*1560, quote.Price)
	require.Len(t, quote.Boxes, MaxUnits/MaxBoxCapacity)
	require.Equal(t, "100", quote.BoxSize)
}

func TestQuotesRejectsOversizedShipmentQuickly(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	started := time.Now()
	_, err := calc.Quotes(context.Background(), math.MaxInt, "Tokyo", "en-US")
	require.True(t, errors.HasCode(err, errors.CodeShippingTooLarge), "err = %v", err)
	require.Less(t, time.Since(started).Seconds(), 1.0)
}

func TestQuotesSortedByPriceThenCarrier(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	quotes, err := calc.Quotes(context.Background(), 4, "Tokyo", "en-US")
	require.NoError(t, err)

	want := []Quote{
		{Carrier: "japanpost", BoxSize: "60", Boxes: []string{"60"}, Zone: 1, Price: 870, EstimatedDelivery: "2-4 days"},
		{Carrier: "sagawa", BoxSize: "60", Boxes: []string{"60"}, Zone: 1, Price: 880, EstimatedDelivery: "1-3 days"},
		{Carrier: "yamato", BoxSize: "60", Boxes: []string{"60"}, Zone: 1, Price: 940, EstimatedDelivery: "1-2 days"},
	}
	if diff := cmp.Diff(want, quotes); diff != "" {
		t.Fatalf("Quotes mismatch (-want +got):\n%s", diff)
	}
}

func TestQuotesSumMultipleBoxes(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	quote, err := calc.Quote(context.Background(), "yamato", 13, "沖縄県", "ja-JP")
	require.NoError(t, err)
	require.Equal(t, "100", quote.BoxSize)
	require.Equal(t, []string{"100", "60"}, quote.Boxes)
	require.Equal(t, 4, quote.Zone)
	require.Equal(t, int64(2130+1460), quote.Price)
}

func TestQuotesZeroUnitsReturnsEmpty(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	quotes, err := calc.Quotes(context.Background(), 0, "Osaka", "ja-JP")
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestQuotesZeroUnitsSkipsPrefectureLookup(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	quotes, err := calc.Quotes(context.Background(), 0, "Atlantis", "ja-JP")
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestQuotesUnknownPrefecture(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	_, err := calc.Quotes(context.Background(), 4, "Atlantis", "ja-JP")
	require.True(t, errors.HasCode(err, errors.CodeShippingUnknownPrefecture), "err = %v", err)
}

func TestQuoteUnknownCarrier(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(catalog.MustLoadEmbedded())
	_, err := calc.Quote(context.Background(), "pigeon", 4, "Tokyo", "ja-JP")
	require.True(t, errors.HasCode(err, errors.CodeShippingUnknownCarrier), "err = %v", err)
}
