// Package records stores typed entity collections as JSON blobs behind a
// storage.CollectionStore.
package records

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/services/storefront/storage"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every storefront collection key.
const KeyPrefix = "storefront_"

// Meta carries the identity every record shares. Embed it by value.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordMeta exposes the embedded Meta for stamping.
func (m *Meta) RecordMeta() *Meta {
	return m
}

// Record is satisfied by a pointer to an entity embedding Meta.
type Record[T any] interface {
	*T
	RecordMeta() *Meta
	Validate() error
}

// Options configures a Collection.
type Options struct {
	Logger *zap.Logger
	Clock  func() time.Time
	NewID  func() (string, error)
}

// Collection is a repository over one stored collection of T.
type Collection[T any, P Record[T]] struct {
	store  storage.CollectionStore
	key    string
	logger *zap.Logger
	clock  func() time.Time
	newID  func() (string, error)
}

// NewCollection binds a repository to key.
func NewCollection[T any, P Record[T]](store storage.CollectionStore, key string, opts Options) *Collection[T, P] {
	c := &Collection[T, P]{
		store:  store,
		key:    strings.TrimSpace(key),
		logger: opts.Logger,
		clock:  opts.Clock,
		newID:  opts.NewID,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.newID == nil {
		c.newID = id.NewID
	}
	return c
}

// Key returns the storage key.
func (c *Collection[T, P]) Key() string {
	return c.key
}

// All returns every record. A missing, undecodable or invalid collection
// reads as empty; only store failures are returned.
func (c *Collection[T, P]) All(ctx context.Context) ([]T, error) {
	raw, err := c.store.GetCollection(ctx, c.key)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", c.key, err)
	}
	return c.decode(raw), nil
}

// Get returns the record with id.
func (c *Collection[T, P]) Get(ctx context.Context, recordID string) (T, bool, error) {
	var zero T
	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	if idx := indexOf[T, P](items, recordID); idx >= 0 {
		return items[idx], true, nil
	}
	return zero, false, nil
}

// Add stamps rec with a fresh ID and creation time, validates it, appends
// it and persists the collection.
func (c *Collection[T, P]) Add(ctx context.Context, rec T) (T, error) {
	var zero T
	recordID, err := c.newID()
	if err != nil {
		return zero, fmt.Errorf("generate id: %w", err)
	}
	meta := P(&rec).RecordMeta()
	meta.ID = recordID
	meta.CreatedAt = c.clock().UTC()
	if err := P(&rec).Validate(); err != nil {
		return zero, err
	}

	unlock := lockKey(c.key)
	defer unlock()

	items, err := c.All(ctx)
	if err != nil {
		return zero, err
	}
	items = append(items, rec)
	if err := c.save(ctx, items); err != nil {
		return zero, err
	}
	return rec, nil
}

// Remove deletes the record with id and reports whether it existed.
func (c *Collection[T, P]) Remove(ctx context.Context, recordID string) (bool, error) {
	unlock := lockKey(c.key)
	defer unlock()

	items, err := c.All(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf[T, P](items, recordID)
	if idx < 0 {
		return false, nil
	}
	items = append(items[:idx], items[idx+1:]...)
	if err := c.save(ctx, items); err != nil {
		return false, err
	}
	return true, nil
}

// Update applies patch to the record with id, validates the result and
// persists it. A patch error aborts without writing. It reports whether
// the record existed.
func (c *Collection[T, P]) Update(ctx context.Context, recordID string, patch func(P) error) (T, bool, error) {
	var zero T
	unlock := lockKey(c.key)
	defer unlock()

	items, err := c.All(ctx)
	if err != nil {
		return zero, false, err
	}
	idx := indexOf[T, P](items, recordID)
	if idx < 0 {
		return zero, false, nil
	}
	updated := items[idx]
	if err := patch(P(&updated)); err != nil {
		return zero, true, err
	}
	// Identity is owned by the collection.
	*P(&updated).RecordMeta() = *P(&items[idx]).RecordMeta()
	if err := P(&updated).Validate(); err != nil {
		return zero, true, err
	}
	items[idx] = updated
	if err := c.save(ctx, items); err != nil {
		return zero, true, err
	}
	return updated, true, nil
}

// Clear deletes the whole collection.
func (c *Collection[T, P]) Clear(ctx context.Context) error {
	unlock := lockKey(c.key)
	defer unlock()
	return c.store.DeleteCollection(ctx, c.key)
}

func (c *Collection[T, P]) decode(raw []byte) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("discarding corrupt collection", zap.String("key", c.key), zap.Error(err))
		return []T{}
	}
	for i := range items {
		if err := P(&items[i]).Validate(); err != nil {
			c.logger.Warn("discarding invalid collection",
				zap.String("key", c.key),
				zap.Int("index", i),
				zap.Error(err),
			)
			return []T{}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func (c *Collection[T, P]) save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.PutCollection(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

func indexOf[T any, P Record[T]](items []T, recordID string) int {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return -1
	}
	for i := range items {
		if P(&items[i]).RecordMeta().ID == recordID {
			return i
		}
	}
	return -1
}

var keyLocks sync.Map

// lockKey serializes read-modify-write cycles on one key within the process.
func lockKey(key string) func() {
	value, _ := keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
