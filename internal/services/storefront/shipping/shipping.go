// Package shipping quotes carrier prices for a cart's box footprint and
// destination prefecture.
package shipping

import (
	"context"
	"sort"
	"strconv"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Box is a shipping container size with a fixed small-equivalent capacity.
type Box struct {
	Size     string `json:"size"`
	Capacity int    `json:"capacity"`
}

// Boxes are ordered smallest first.
var Boxes = []Box{
	{Size: "60", Capacity: 4},
	{Size: "80", Capacity: 6},
	{Size: "100", Capacity: 12},
}

// MaxBoxCapacity is the capacity of the largest box.
var MaxBoxCapacity = Boxes[len(Boxes)-1].Capacity

// Quote is one carrier's price to ship a cart to a zone.
type Quote struct {
	Carrier           string   `json:"carrier"`
	BoxSize           string   `json:"boxSize"`
	Boxes             []string `json:"boxes"`
	Zone              int      `json:"zone"`
	Price             int64    `json:"price"`
	EstimatedDelivery string   `json:"estimatedDelivery"`
}

// SelectBox returns the smallest box holding units, or false when units
// is not positive or exceeds the largest box.
func SelectBox(units int) (Box, bool) {
	if units <= 0 {
		return Box{}, false
	}
	for _, box := range Boxes {
		if units <= box.Capacity {
			return box, true
		}
	}
	return Box{}, false
}

// MaxUnits caps the small-equivalent units of a single shipment.
const MaxUnits = 1200

// Packing is a box split: Full largest boxes plus an optional remainder box.
type Packing struct {
	Full    int
	Rest    Box
	HasRest bool
}

// Count is the number of boxes in the packing.
func (p Packing) Count() int {
	if p.HasRest {
		return p.Full + 1
	}
	return p.Full
}

// Pack splits units across boxes: the largest box while the remainder does
// not fit in one box, then the smallest box holding the rest. The result
// uses ceil(units/12) boxes. Zero units need no boxes; units above MaxUnits
// are rejected.
func Pack(units int) (Packing, error) {
	if units > MaxUnits {
		return Packing{}, errors.WithMetadata(errors.CodeShippingTooLarge, "shipment too large", map[string]string{
			"Units": strconv.Itoa(units),
			"Max":   strconv.Itoa(MaxUnits),
		})
	}
	if units <= 0 {
		return Packing{}, nil
	}
	largest := Boxes[len(Boxes)-1]
	full := (units - 1) / largest.Capacity
	rest, _ := SelectBox(units - full*largest.Capacity)
	return Packing{Full: full, Rest: rest, HasRest: true}, nil
}

// PackBoxes lists the boxes of Pack(units) largest first. It returns nil
// for zero units and for units above MaxUnits.
func PackBoxes(units int) []Box {
	packing, err := Pack(units)
	if err != nil {
		return nil
	}
	packed := make([]Box, 0, packing.Count())
	for i := 0; i < packing.Full; i++ {
		packed = append(packed, Boxes[len(Boxes)-1])
	}
	if packing.HasRest {
		packed = append(packed, packing.Rest)
	}
	return packed
}

// Calculator quotes shipping against a catalog's zone and rate tables.
type Calculator struct {
	catalog *catalog.Catalog
}

// NewCalculator builds a calculator over c.
func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c}
}

// Zone resolves a prefecture name to its zone.
func (c *Calculator) Zone(prefecture string) (catalog.Prefecture, error) {
	pref, ok := c.catalog.Prefecture(prefecture)
	if !ok {
		return catalog.Prefecture{}, errors.WithMetadata(
			errors.CodeShippingUnknownPrefecture,
			"unknown prefecture",
			map[string]string{"Prefecture": prefecture},
		)
	}
	return pref, nil
}

// Quotes returns one quote per carrier, cheapest first with ties broken by
// carrier name. Zero units return no quotes before the prefecture is
// resolved; units above MaxUnits fail with SHIPPING_TOO_LARGE.
func (c *Calculator) Quotes(ctx context.Context, units int, prefecture string, locale string) ([]Quote, error) {
	_, span := otel.Tracer("storefront/shipping").Start(ctx, "shipping.quotes")
	defer span.End()
	span.SetAttributes(attribute.Int("shipping.units", units), attribute.String("shipping.prefecture", prefecture))

	if units <= 0 {
		return []Quote{}, nil
	}
	packing, err := Pack(units)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	pref, err := c.Zone(prefecture)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	carriers := c.catalog.Carriers()
	quotes := make([]Quote, 0, len(carriers))
	for _, carrier := range carriers {
		quote, err := pricePacking(carrier, packing, pref.Zone)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		quote.EstimatedDelivery = carrier.DeliveryLabel(locale)
		quotes = append(quotes, quote)
	}
	sort.SliceStable(quotes, func(i, j int) bool {
		if quotes[i].Price != quotes[j].Price {
			return quotes[i].Price < quotes[j].Price
		}
		return quotes[i].Carrier < quotes[j].Carrier
	})
	span.SetAttributes(attribute.Int("shipping.zone", pref.Zone), attribute.Int("shipping.boxes", packing.Count()))
	return quotes, nil
}

// Quote returns the quote for a single carrier.
func (c *Calculator) Quote(ctx context.Context, carrierName string, units int, prefecture string, locale string) (Quote, error) {
	carrier, ok := c.catalog.Carrier(carrierName)
	if !ok {
		return Quote{}, errors.WithMetadata(
			errors.CodeShippingUnknownCarrier,
			"unknown carrier",
			map[string]string{"Carrier": carrierName},
		)
	}
	quotes, err := c.Quotes(ctx, units, prefecture, locale)
	if err != nil {
		return Quote{}, err
	}
	for _, quote := range quotes {
		if quote.Carrier == carrier.Name {
			return quote, nil
		}
	}
	return Quote{}, errors.New(errors.CodeShippingNoRate, "no quote for empty shipment")
}

func pricePacking(carrier catalog.Carrier, packing Packing, zone int) (Quote, error) {
	largest := Boxes[len(Boxes)-1]
	quote := Quote{Carrier: carrier.Name, Zone: zone, Boxes: make([]string, 0, packing.Count())}
	if packing.Full > 0 {
		price, err := rate(carrier, largest.Size, zone)
		if err != nil {
			return Quote{}, err
		}
		quote.Price += int64(packing.Full) * price
		quote.BoxSize = largest.Size
		for i := 0; i < packing.Full; i++ {
			quote.Boxes = append(quote.Boxes, largest.Size)
		}
	}
	if packing.HasRest {
		price, err := rate(carrier, packing.Rest.Size, zone)
		if err != nil {
			return Quote{}, err
		}
		quote.Price += price
		if capacityOf(packing.Rest.Size) > capacityOf(quote.BoxSize) {
			quote.BoxSize = packing.Rest.Size
		}
		quote.Boxes = append(quote.Boxes, packing.Rest.Size)
	}
	return quote, nil
}

func rate(carrier catalog.Carrier, size string, zone int) (int64, error) {
	price, ok := carrier.Rate(size, zone)
	if !ok {
		return 0, errors.WithMetadata(
			errors.CodeShippingNoRate,
			"missing rate",
			map[string]string{"Carrier": carrier.Name, "Box": size, "Zone": strconv.Itoa(zone)},
		)
	}
	return price, nil
}

func capacityOf(size string) int {
	for _, box := range Boxes {
		if box.Size == size {
			return box.Capacity
		}
	}
	return 0
}
