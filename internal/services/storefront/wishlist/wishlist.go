// Package wishlist keeps a saved-products list per customer.
package wishlist

import (
	"context"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/services/storefront/records"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
)

// KeyPrefix prefixes each customer's wishlist key.
const KeyPrefix = records.KeyPrefix + "wishlist_"

// Key returns the storage key for a customer's wishlist.
func Key(customerID string) string {
	return KeyPrefix + strings.TrimSpace(customerID)
}

// Entry is one saved product.
type Entry struct {
	records.Meta
	ProductID string `json:"productId"`
}

// Validate checks the entry's shape.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.ProductID) == "" {
		return errors.New(errors.CodeWishlistInvalid, "wishlist entry requires id and product")
	}
	return nil
}

// Service opens per-customer wishlists over one store.
type Service struct {
	store storage.CollectionStore
	opts  records.Options
}

// NewService binds the service to store.
func NewService(store storage.CollectionStore, opts records.Options) *Service {
	return &Service{store: store, opts: opts}
}

// For returns the wishlist of customerID.
func (s *Service) For(customerID string) (*List, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errors.New(errors.CodeWishlistInvalid, "customer id is required")
	}
	return &List{entries: records.NewCollection[Entry, *Entry](s.store, Key(customerID), s.opts)}, nil
}

// List is one customer's wishlist.
type List struct {
	entries *records.Collection[Entry, *Entry]
}

// Entries returns saved products in the order they were added.
func (l *List) Entries(ctx context.Context) ([]Entry, error) {
	return l.entries.All(ctx)
}

// Add saves productID. Adding a saved product returns the existing entry.
func (l *List) Add(ctx context.Context, productID string) (Entry, error) {
	productID = strings.TrimSpace(productID)
	if existing, found, err := l.find(ctx, productID); err != nil {
		return Entry{}, err
	} else if found {
		return existing, nil
	}
	return l.entries.Add(ctx, Entry{ProductID: productID})
}

// Remove deletes an entry by id.
func (l *List) Remove(ctx context.Context, entryID string) (bool, error) {
	return l.entries.Remove(ctx, entryID)
}

// RemoveProduct deletes the entry for productID.
func (l *List) RemoveProduct(ctx context.Context, productID string) (bool, error) {
	existing, found, err := l.find(ctx, productID)
	if err != nil || !found {
		return false, err
	}
	return l.entries.Remove(ctx, existing.ID)
}

// Contains reports whether productID is saved.
func (l *List) Contains(ctx context.Context, productID string) (bool, error) {
	_, found, err := l.find(ctx, productID)
	return found, err
}

// Clear empties the wishlist.
func (l *List) Clear(ctx context.Context) error {
	return l.entries.Clear(ctx)
}

func (l *List) find(ctx context.Context, productID string) (Entry, bool, error) {
	productID = strings.TrimSpace(productID)
	all, err := l.entries.All(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range all {
		if e.ProductID == productID {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}
