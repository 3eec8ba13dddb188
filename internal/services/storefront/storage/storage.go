// Package storage defines the persistence boundary for storefront records.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates no collection is stored under a key.
var ErrNotFound = errors.New("collection not found")

// CollectionInfo describes one stored collection.
type CollectionInfo struct {
	Key       string
	Size      int
	UpdatedAt time.Time
}

// CollectionStore keeps JSON-encoded collections keyed by name. Writes
// replace the whole value; the last writer wins.
type CollectionStore interface {
	GetCollection(ctx context.Context, key string) ([]byte, error)
	PutCollection(ctx context.Context, key string, value []byte) error
	DeleteCollection(ctx context.Context, key string) error
	ListCollections(ctx context.Context, prefix string) ([]CollectionInfo, error)
}
