// Package catalog holds the storefront's static reference data: the
// product catalog, the prefecture zone table and the carrier rate matrix.
// Tables are embedded YAML parsed once and never mutated.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups products for browsing.
type Category string

const (
	CategoryStandard Category = "standard"
	CategoryPremium  Category = "premium"
)

// Size is the jar size a product is sold in.
type Size string

const (
	SizeSmall Size = "small"
	SizeLarge Size = "large"
)

// ParseSize validates a size name.
func ParseSize(value string) (Size, bool) {
	switch Size(strings.ToLower(strings.TrimSpace(value))) {
	case SizeSmall:
		return SizeSmall, true
	case SizeLarge:
		return SizeLarge, true
	default:
		return "", false
	}
}

// Units returns the small-equivalent capacity a jar of this size occupies.
func (s Size) Units() int {
	if s == SizeLarge {
		return 2
	}
	return 1
}

// Prices are per-jar prices in yen.
type Prices struct {
	Small int64 `yaml:"small" json:"small"`
	Large int64 `yaml:"large" json:"large"`
}

// Product is one catalog entry.
type Product struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	LocalName string   `yaml:"local_name" json:"localName"`
	Category  Category `yaml:"category" json:"category"`
	Flavor    string   `yaml:"flavor" json:"flavor"`
	Image     string   `yaml:"image" json:"image"`
	Prices    Prices   `yaml:"prices" json:"prices"`
}

// Price returns the unit price for size.
func (p Product) Price(size Size) int64 {
	if size == SizeLarge {
		return p.Prices.Large
	}
	return p.Prices.Small
}

// Prefecture maps a destination to its shipping zone.
type Prefecture struct {
	Name      string `yaml:"name" json:"name"`
	LocalName string `yaml:"local_name" json:"localName"`
	Zone      int    `yaml:"zone" json:"zone"`
}

// Carrier is a shipping carrier with its rate table.
type Carrier struct {
	Name     string                   `yaml:"name"`
	Delivery map[string]string        `yaml:"delivery"`
	Rates    map[string]map[int]int64 `yaml:"rates"`
}

// DeliveryLabel returns the estimated delivery window for locale, falling
// back to the Japanese label.
func (c Carrier) DeliveryLabel(locale string) string {
	if label, ok := c.Delivery[locale]; ok {
		return label
	}
	return c.Delivery[baseLocale]
}

// Rate returns the price of one box at zone.
func (c Carrier) Rate(box string, zone int) (int64, bool) {
	byZone, ok := c.Rates[box]
	if !ok {
		return 0, false
	}
	price, ok := byZone[zone]
	return price, ok
}

const baseLocale = "ja-JP"

// BoxSizes lists the box sizes every carrier must price.
var BoxSizes = []string{"60", "80", "100"}

// Zones is the number of shipping zones.
const Zones = 4

type productsFile struct {
	Products []Product `yaml:"products"`
}

type prefecturesFile struct {
	Prefectures []Prefecture `yaml:"prefectures"`
}

type ratesFile struct {
	Carriers []Carrier `yaml:"carriers"`
}

// Catalog is the loaded, validated reference data.
type Catalog struct {
	products     []Product
	productsByID map[string]Product
	prefectures  []Prefecture
	prefByName   map[string]Prefecture
	carriers     []Carrier
}

//go:embed data/*.yaml
var embeddedFS embed.FS

// LoadEmbedded loads the tables compiled into the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(embeddedFS, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded catalog: %w", err)
	}
	return Load(sub)
}

// MustLoadEmbedded is LoadEmbedded for process start.
func MustLoadEmbedded() *Catalog {
	c, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads products.yaml, prefectures.yaml and rates.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	var products productsFile
	if err := decodeFile(fsys, "products.yaml", &products); err != nil {
		return nil, err
	}
	var prefectures prefecturesFile
	if err := decodeFile(fsys, "prefectures.yaml", &prefectures); err != nil {
		return nil, err
	}
	var rates ratesFile
	if err := decodeFile(fsys, "rates.yaml", &rates); err != nil {
		return nil, err
	}

	c := &Catalog{
		products:     products.Products,
		productsByID: make(map[string]Product, len(products.Products)),
		prefectures:  prefectures.Prefectures,
		prefByName:   make(map[string]Prefecture, len(prefectures.Prefectures)*3),
		carriers:     rates.Carriers,
	}
	for _, product := range c.products {
		if err := validateProduct(product); err != nil {
			return nil, err
		}
		if _, exists := c.productsByID[product.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %q", product.ID)
		}
		c.productsByID[product.ID] = product
	}
	for _, pref := range c.prefectures {
		if pref.Zone < 1 || pref.Zone > Zones {
			return nil, fmt.Errorf("prefecture %q: zone %d out of range", pref.Name, pref.Zone)
		}
		for _, key := range prefectureKeys(pref) {
			if existing, exists := c.prefByName[key]; exists && existing.Name != pref.Name {
				return nil, fmt.Errorf("prefecture key %q is ambiguous", key)
			}
			c.prefByName[key] = pref
		}
	}
	if len(c.carriers) == 0 {
		return nil, fmt.Errorf("rate table has no carriers")
	}
	sort.Slice(c.carriers, func(i, j int) bool { return c.carriers[i].Name < c.carriers[j].Name })
	for _, carrier := range c.carriers {
		if err := validateCarrier(carrier); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, dst any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product %q: id is required", p.Name)
	}
	if p.Category != CategoryStandard && p.Category != CategoryPremium {
		return fmt.Errorf("product %q: unknown category %q", p.ID, p.Category)
	}
	if p.Prices.Small <= 0 || p.Prices.Large <= 0 {
		return fmt.Errorf("product %q: prices must be positive", p.ID)
	}
	return nil
}

func validateCarrier(c Carrier) error {
	if _, ok := c.Delivery[baseLocale]; !ok {
		return fmt.Errorf("carrier %q: missing %s delivery label", c.Name, baseLocale)
	}
	for _, box := range BoxSizes {
		for zone := 1; zone <= Zones; zone++ {
			price, ok := c.Rate(box, zone)
			if !ok || price <= 0 {
				return fmt.Errorf("carrier %q: missing rate for box %s zone %d", c.Name, box, zone)
			}
		}
	}
	return nil
}

// prefectureKeys lists the lookup keys for a prefecture: its English name,
// its local name, and the local name without the 都/府/県 suffix.
func prefectureKeys(p Prefecture) []string {
	keys := []string{normalizeKey(p.Name), normalizeKey(p.LocalName)}
	for _, suffix := range []string{"都", "府", "県"} {
		if trimmed, ok := strings.CutSuffix(p.LocalName, suffix); ok && trimmed != "" {
			keys = append(keys, normalizeKey(trimmed))
		}
	}
	return keys
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Products returns the products in category, or every product when
// category is empty.
func (c *Catalog) Products(category Category) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (Product, bool) {
	p, ok := c.productsByID[strings.TrimSpace(id)]
	return p, ok
}

// Prefectures returns all prefectures in table order.
func (c *Catalog) Prefectures() []Prefecture {
	out := make([]Prefecture, len(c.prefectures))
	copy(out, c.prefectures)
	return out
}

// Prefecture resolves an English or local prefecture name, case-insensitively.
func (c *Catalog) Prefecture(name string) (Prefecture, bool) {
	p, ok := c.prefByName[normalizeKey(name)]
	return p, ok
}

// Carriers returns carriers sorted by name.
func (c *Catalog) Carriers() []Carrier {
	out := make([]Carrier, len(c.carriers))
	copy(out, c.carriers)
	return out
}

// Carrier looks up a carrier by name.
func (c *Catalog) Carrier(name string) (Carrier, bool) {
	name = normalizeKey(name)
	for _, carrier := range c.carriers {
		if carrier.Name == name {
			return carrier, true
		}
	}
	return Carrier{}, false
}
