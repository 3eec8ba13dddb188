// Package cart keeps per-session shopping carts in memory.
package cart

import (
	"strconv"
	"sync"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
)

// MaxLineQuantity caps the quantity of a single (product, size) line.
const MaxLineQuantity = 99

// ValidateQuantity rejects quantities outside 1..MaxLineQuantity.
func ValidateQuantity(qty int) error {
	if qty < 1 || qty > MaxLineQuantity {
		return errors.WithMetadata(errors.CodeCartInvalidQuantity, "quantity out of range", map[string]string{
			"Quantity": strconv.Itoa(qty),
			"Max":      strconv.Itoa(MaxLineQuantity),
		})
	}
	return nil
}

// Item is one (product, size) line in a cart.
type Item struct {
	Product  catalog.Product `json:"product"`
	Size     catalog.Size    `json:"size"`
	Quantity int             `json:"quantity"`
}

// Subtotal is quantity times the unit price for the item's size.
func (i Item) Subtotal() int64 {
	return int64(i.Quantity) * i.Product.Price(i.Size)
}

// Totals summarizes a cart.
type Totals struct {
	Items int   `json:"items"`
	Price int64 `json:"price"`
}

// SpaceUsage is the box-fitting footprint of a cart; a large jar takes the
// space of two small ones.
type SpaceUsage struct {
	SmallCount           int `json:"smallCount"`
	LargeCount           int `json:"largeCount"`
	TotalSmallEquivalent int `json:"totalSmallEquivalent"`
}

// Snapshot is a consistent read of a cart.
type Snapshot struct {
	Items  []Item     `json:"items"`
	Totals Totals     `json:"totals"`
	Space  SpaceUsage `json:"space"`
}

// Cart holds at most one Item per (product ID, size). It is safe for
// concurrent use.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add increments the matching line or appends a new one. Non-positive
// quantities are ignored. A line that would exceed MaxLineQuantity is left
// unchanged and CART_INVALID_QUANTITY is returned.
func (c *Cart) Add(product catalog.Product, size catalog.Size, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexLocked(product.ID, size); idx >= 0 {
		if err := ValidateQuantity(c.items[idx].Quantity + qty); err != nil {
			return err
		}
		c.items[idx].Quantity += qty
		return nil
	}
	c.items = append(c.items, Item{Product: product, Size: size, Quantity: qty})
	return nil
}

// Remove deletes the matching line and reports whether one existed.
func (c *Cart) Remove(productID string, size catalog.Size) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(productID, size)
}

// SetQuantity sets the quantity of an existing line; qty <= 0 removes it
// and quantities above MaxLineQuantity saturate. It reports whether the
// line existed.
func (c *Cart) SetQuantity(productID string, size catalog.Size, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		return c.removeLocked(productID, size)
	}
	idx := c.indexLocked(productID, size)
	if idx < 0 {
		return false
	}
	c.items[idx].Quantity = min(qty, MaxLineQuantity)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

// Subtract removes the quantities of items from the matching lines, such as
// the lines of a snapshot that was just ordered. Lines added or increased
// after the snapshot keep the difference.
func (c *Cart) Subtract(items []Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		idx := c.indexLocked(item.Product.ID, item.Size)
		if idx < 0 {
			continue
		}
		if c.items[idx].Quantity <= item.Quantity {
			c.removeLocked(item.Product.ID, item.Size)
			continue
		}
		c.items[idx].Quantity -= item.Quantity
	}
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemsLocked()
}

// Totals returns the item count and price.
func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totals(c.items)
}

// SpaceUsed returns the cart's small-equivalent footprint.
func (c *Cart) SpaceUsed() SpaceUsage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return spaceUsed(c.items)
}

// Snapshot returns items, totals and space from a single read.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Items:  c.itemsLocked(),
		Totals: totals(c.items),
		Space:  spaceUsed(c.items),
	}
}

func (c *Cart) indexLocked(productID string, size catalog.Size) int {
	for idx, item := range c.items {
		if item.Product.ID == productID && item.Size == size {
			return idx
		}
	}
	return -1
}

func (c *Cart) removeLocked(productID string, size catalog.Size) bool {
	idx := c.indexLocked(productID, size)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

func (c *Cart) itemsLocked() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func totals(items []Item) Totals {
	var t Totals
	for _, item := range items {
		t.Items += item.Quantity
		t.Price += item.Subtotal()
	}
	return t
}

func spaceUsed(items []Item) SpaceUsage {
	var usage SpaceUsage
	for _, item := range items {
		switch item.Size {
		case catalog.SizeLarge:
			usage.LargeCount += item.Quantity
		default:
			usage.SmallCount += item.Quantity
		}
	}
	usage.TotalSmallEquivalent = usage.SmallCount + 2*usage.LargeCount
	return usage
}
