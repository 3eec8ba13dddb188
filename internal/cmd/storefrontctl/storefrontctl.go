// Package storefrontctl implements the storefront operator CLI.
package storefrontctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/storefront/internal/platform/cmd"
	platformi18n "github.com/louisbranch/storefront/internal/platform/i18n"
	"github.com/louisbranch/storefront/internal/services/storefront/app"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"github.com/louisbranch/storefront/internal/services/storefront/coupons"
	"github.com/louisbranch/storefront/internal/services/storefront/integration/postal"
	"github.com/louisbranch/storefront/internal/services/storefront/orders"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/shipping"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// Options carry the shared CLI state; tests substitute the store opener,
// postal lookup and clock.
type Options struct {
	DBPath    string
	PostalURL string
	Lang      string
	JSON      bool

	OpenStore func(path string) (storage.CollectionStore, func() error, error)
	Postal    func(baseURL string) PostalLookup
	Clock     func() time.Time
}

// PostalLookup resolves postal codes to addresses.
type PostalLookup interface {
	Lookup(ctx context.Context, code string) (postal.Address, error)
}

// DefaultOptions reads CLI defaults from STOREFRONT_ environment variables.
func DefaultOptions() (*Options, error) {
	var env struct {
		DBPath    string `env:"DB_PATH" envDefault:"data/storefront.db"`
		PostalURL string `env:"POSTAL_API_URL"`
		JSON      bool   `env:"CTL_JSON"`
	}
	if err := entrypoint.ParseConfig(&env); err != nil {
		return nil, err
	}
	return &Options{
		DBPath:    env.DBPath,
		PostalURL: env.PostalURL,
		JSON:      env.JSON,
		Lang:      platformi18n.DefaultTag().String(),
		OpenStore: app.OpenStore,
		Clock:     time.Now,
	}, nil
}

// NewRootCommand builds the storefrontctl command tree. A nil opts reads
// defaults from the environment and fails on malformed values.
func NewRootCommand(opts *Options) (*cobra.Command, error) {
	if opts == nil {
		var err error
		if opts, err = DefaultOptions(); err != nil {
			return nil, err
		}
	}
	if opts.OpenStore == nil {
		opts.OpenStore = app.OpenStore
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Postal == nil {
		opts.Postal = func(baseURL string) PostalLookup {
			return postal.NewClient(baseURL, nil)
		}
	}

	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Operate the storefront: quotes, postal lookups, statistics and coupons",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.DBPath, "db", opts.DBPath, `SQLite database path, or "memory"`)
	root.PersistentFlags().StringVar(&opts.Lang, "lang", opts.Lang, "Display language (ja-JP or en-US)")
	root.PersistentFlags().BoolVar(&opts.JSON, "json", opts.JSON, "Print JSON instead of text")

	root.AddCommand(
		newQuoteCommand(opts),
		newPostalCommand(opts),
		newStatsCommand(opts),
		newCouponsCommand(opts),
	)
	return root, nil
}

func newQuoteCommand(opts *Options) *cobra.Command {
	var prefecture string
	var small, large int
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compare carrier shipping prices for a jar count and prefecture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if small < 0 || large < 0 || small > shipping.MaxUnits || large > shipping.MaxUnits {
				return fmt.Errorf("jar counts must be between 0 and %d", shipping.MaxUnits)
			}
			cat, err := catalog.LoadEmbedded()
			if err != nil {
				return err
			}
			tag := opts.tag()
			units := small*catalog.SizeSmall.Units() + large*catalog.SizeLarge.Units()
			quotes, err := shipping.NewCalculator(cat).Quotes(cmd.Context(), units, prefecture, platformi18n.LocaleString(tag))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return writeJSON(out, quotes)
			}
			if len(quotes) == 0 {
				_, err := fmt.Fprintln(out, "no shipping required")
				return err
			}
			for _, q := range quotes {
				if _, err := fmt.Fprintf(out, "%-10s %-8s boxes=%s zone=%d %s\n",
					q.Carrier, platformi18n.FormatYen(tag, q.Price), strings.Join(q.Boxes, "+"), q.Zone, q.EstimatedDelivery); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefecture, "prefecture", "p", "", "Destination prefecture (English or Japanese name)")
	cmd.Flags().IntVar(&small, "small", 0, "Number of small jars")
	cmd.Flags().IntVar(&large, "large", 0, "Number of large jars")
	_ = cmd.MarkFlagRequired("prefecture")
	return cmd
}

func newPostalCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "postal CODE",
		Short: "Look up the address for a 7-digit postal code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			address, err := opts.Postal(opts.PostalURL).Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return writeJSON(out, address)
			}
			_, err = fmt.Fprintf(out, "%s %s%s%s\n", address.PostalCode, address.Province, address.City, address.Town)
			return err
		},
	}
}

func newStatsCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print order statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withStore(func(store storage.CollectionStore) error {
				stats, err := orders.NewService(store, records.Options{}).Statistics(cmd.Context(), opts.Clock())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.JSON {
					return writeJSON(out, stats)
				}
				tag := opts.tag()
				lines := []string{
					fmt.Sprintf("orders:      %d", stats.TotalOrders),
					fmt.Sprintf("revenue:     %s", platformi18n.FormatYen(tag, stats.TotalRevenue)),
					fmt.Sprintf("average:     %s", platformi18n.FormatYen(tag, stats.AverageOrderValue)),
					fmt.Sprintf("this month:  %d orders, %s", stats.ThisMonth.Orders, platformi18n.FormatYen(tag, stats.ThisMonth.Revenue)),
					fmt.Sprintf("last month:  %d orders, %s", stats.LastMonth.Orders, platformi18n.FormatYen(tag, stats.LastMonth.Revenue)),
					fmt.Sprintf("growth:      %.1f%%", stats.RevenueGrowth),
				}
				for _, status := range orders.Statuses {
					lines = append(lines, fmt.Sprintf("%-12s %d", string(status)+":", stats.ByStatus[status]))
				}
				_, err = fmt.Fprintln(out, strings.Join(lines, "\n"))
				return err
			})
		},
	}
}

func newCouponsCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coupons",
		Short: "Manage coupon codes",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List coupons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withStore(func(store storage.CollectionStore) error {
				all, err := coupons.NewService(store, records.Options{}).List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.JSON {
					return writeJSON(out, all)
				}
				for _, c := range all {
					if _, err := fmt.Fprintln(out, describeCoupon(c)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	var input coupons.Coupon
	var kind, expires string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a coupon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			coupon := input
			coupon.Kind = coupons.Kind(strings.ToLower(strings.TrimSpace(kind)))
			coupon.Active = true
			if expires != "" {
				at, err := time.Parse(time.DateOnly, expires)
				if err != nil {
					return fmt.Errorf("parse --expires: %w", err)
				}
				coupon.ExpiresAt = &at
			}
			return opts.withStore(func(store storage.CollectionStore) error {
				added, err := coupons.NewService(store, records.Options{Clock: opts.Clock}).Add(cmd.Context(), coupon)
				if err != nil {
					return err
				}
				if opts.JSON {
					return writeJSON(cmd.OutOrStdout(), added)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), describeCoupon(added))
				return err
			})
		},
	}
	add.Flags().StringVar(&input.Code, "code", "", "Coupon code")
	add.Flags().StringVar(&kind, "kind", string(coupons.KindPercent), "percent or fixed")
	add.Flags().Int64Var(&input.Value, "value", 0, "Percent (1-100) or yen amount")
	add.Flags().Int64Var(&input.MinPurchase, "min", 0, "Minimum subtotal in yen")
	add.Flags().IntVar(&input.UsageLimit, "limit", 0, "Maximum redemptions (0 for unlimited)")
	add.Flags().StringVar(&expires, "expires", "", "Expiry date (YYYY-MM-DD, UTC)")
	_ = add.MarkFlagRequired("code")
	_ = add.MarkFlagRequired("value")

	remove := &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a coupon by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(func(store storage.CollectionStore) error {
				removed, err := coupons.NewService(store, records.Options{}).Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("coupon %s not found", args[0])
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return err
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func (o *Options) tag() language.Tag {
	if tag, ok := platformi18n.ParseTag(o.Lang); ok {
		return tag
	}
	return platformi18n.DefaultTag()
}

func (o *Options) withStore(fn func(storage.CollectionStore) error) error {
	store, closeStore, err := o.OpenStore(o.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	return fn(store)
}

func describeCoupon(c coupons.Coupon) string {
	value := fmt.Sprintf("%d%%", c.Value)
	if c.Kind == coupons.KindFixed {
		value = fmt.Sprintf("¥%d", c.Value)
	}
	state := "active"
	if !c.Active {
		state = "inactive"
	}
	line := fmt.Sprintf("%s\t%s\t%s\tused %d", c.ID, c.Code, value, c.UsedCount)
	if c.UsageLimit > 0 {
		line += fmt.Sprintf("/%d", c.UsageLimit)
	}
	if c.ExpiresAt != nil {
		line += "\texpires " + c.ExpiresAt.Format(time.DateOnly)
	}
	return line + "\t" + state
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
