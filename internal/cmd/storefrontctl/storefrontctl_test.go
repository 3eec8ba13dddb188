package storefrontctl

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/postal"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
	"github.com/louisbranch/storefront/internal/services/storefront/storage/memory"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)

type stubPostal struct{}

func (stubPostal) Lookup(_ context.Context, code string) (postal.Address, error) {
	digits, err := postal.NormalizeCode(code)
	if err != nil {
		return postal.Address{}, err
	}
	return postal.Address{PostalCode: postal.Format(digits), Province: "東京都", City: "千代田区", Town: "千代田"}, nil
}

func newOptions(store *memory.Store) *Options {
	return &Options{
		DBPath: "memory",
		Lang:   "en-US",
		OpenStore: func(string) (storage.CollectionStore, func() error, error) {
			return store, func() error { return nil }, nil
		},
		Postal: func(string) PostalLookup { return stubPostal{} },
		Clock:  func() time.Time { return now },
	}
}

func run(t *testing.T, opts *Options, args ...string) (string, error) {
	t.Helper()
	root, err := NewRootCommand(opts)
	require.NoError(t, err)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuoteCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, newOptions(memory.New()), "quote", "--prefecture", "Tokyo", "--small", "2", "--large", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "japanpost"), lines[0])
	require.Contains(t, lines[0], "¥870")
	require.Contains(t, lines[0], "boxes=60")

	out, err = run(t, newOptions(memory.New()), "--json", "quote", "-p", "沖縄県", "--large", "7")
	require.NoError(t, err)
	var quotes []shipping.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &quotes))
	require.Len(t, quotes, 3)
	require.Equal(t, 4, quotes[0].Zone)
	require.Equal(t, []string{"100", "60"}, quotes[0].Boxes)

	out, err = run(t, newOptions(memory.New()), "quote", "-p", "Tokyo")
	require.NoError(t, err)
	require.Equal(t, "no shipping required\n", out)

	_, err = run(t, newOptions(memory.New()), "quote", "-p", "Atlantis", "--small", "1")
	require.Error(t, err)

	_, err = run(t, newOptions(memory.New()), "quote", "--small", "1")
	require.Error(t, err)
}

func TestQuoteCommandRejectsOversizedCounts(t *testing.T) {
	t.Parallel()

	_, err := run(t, newOptions(memory.New()), "quote", "-p", "Tokyo", "--large", "9223372036854775807")
	require.ErrorContains(t, err, "between 0 and")

	_, err = run(t, newOptions(memory.New()), "quote", "-p", "Tokyo", "--small", strconv.Itoa(shipping.MaxUnits+1))
	require.ErrorContains(t, err, "between 0 and")
}

func TestNewRootCommandReportsMalformedEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_CTL_JSON", "maybe")

	root, err := NewRootCommand(nil)
	require.Error(t, err)
	require.Nil(t, root)
	require.ErrorContains(t, err, "parse env")
}

func TestDefaultOptionsReadsEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_DB_PATH", "memory")
	t.Setenv("STOREFRONT_CTL_JSON", "true")

	opts, err := DefaultOptions()
	require.NoError(t, err)
	require.Equal(t, "memory", opts.DBPath)
	require.True(t, opts.JSON)
}

func TestPostalCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, newOptions(memory.New()), "postal", "1000001")
	require.NoError(t, err)
	require.Equal(t, "100-0001 東京都千代田区千代田\n", out)

	_, err = run(t, newOptions(memory.New()), "postal", "12345")
	require.Error(t, err)
}

func TestCouponsCommands(t *testing.T) {
	t.Parallel()

	store := memory.New()
	opts := newOptions(store)

	out, err := run(t, opts, "coupons", "add", "--code", "autumn", "--kind", "fixed", "--value", "300", "--limit", "10", "--expires", "2026-11-30")
	require.NoError(t, err)
	require.Contains(t, out, "AUTUMN")
	require.Contains(t, out, "¥300")
	require.Contains(t, out, "used 0/10")
	require.Contains(t, out, "expires 2026-11-30")

	_, err = run(t, opts, "coupons", "add", "--code", "AUTUMN", "--value", "5")
	require.Error(t, err)

	out, err = run(t, opts, "--json", "coupons", "list")
	require.NoError(t, err)
	var listed []coupons.Coupon
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)

	out, err = run(t, opts, "coupons", "remove", listed[0].ID)
	require.NoError(t, err)
	require.Equal(t, "removed "+listed[0].ID+"\n", out)

	_, err = run(t, opts, "coupons", "remove", listed[0].ID)
	require.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	t.Parallel()

	store := memory.New()
	svc := orders.NewService(store, records.Options{Clock: func() time.Time { return now }})
	_, err := svc.Add(context.Background(), orders.Order{
		Items:      []orders.Item{{ProductID: "shiro-miso", Size: "small", Quantity: 2, UnitPrice: 1200}},
		Subtotal:   2400,
		Shipping:   940,
		Total:      3340,
		Carrier:    "yamato",
		Prefecture: "Tokyo",
		Customer:   orders.Contact{Name: "Sato", Email: "sato@example.jp"},
	})
	require.NoError(t, err)

	out, err := run(t, newOptions(store), "stats")
	require.NoError(t, err)
	require.Contains(t, out, "orders:      1")
	require.Contains(t, out, "revenue:     ¥3,340")
	require.Contains(t, out, "pending:     1")
}
