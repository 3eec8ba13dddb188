// Package memory provides a process-local collection store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/storefront/internal/services/storefront/storage"
)

// Store keeps collections in a map. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   func() time.Time
}

type entry struct {
	value     []byte
	updatedAt time.Time
}

var _ storage.CollectionStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]entry), clock: time.Now}
}

// GetCollection returns a copy of the value under key or storage.ErrNotFound.
func (s *Store) GetCollection(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("collection key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// PutCollection replaces the value under key.
func (s *Store) PutCollection(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("collection key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: append([]byte(nil), value...), updatedAt: s.clock().UTC()}
	return nil
}

// DeleteCollection removes key.
func (s *Store) DeleteCollection(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, strings.TrimSpace(key))
	return nil
}

// ListCollections returns collections whose key starts with prefix, by key.
func (s *Store) ListCollections(ctx context.Context, prefix string) ([]storage.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var infos []storage.CollectionInfo
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, storage.CollectionInfo{Key: key, Size: len(e.value), UpdatedAt: e.updatedAt})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
