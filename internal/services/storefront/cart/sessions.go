package cart

import (
	"strings"
	"sync"
	"time"
)

// Sessions maps browsing-session ids to carts, creating them on first use.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*entry
	clock func() time.Time
}

type entry struct {
	cart     *Cart
	lastSeen time.Time
}

// NewSessions returns an empty registry.
func NewSessions() *Sessions {
	return &Sessions{
		carts: make(map[string]*entry),
		clock: time.Now,
	}
}

// Get returns the cart for sessionID, creating it when absent.
func (s *Sessions) Get(sessionID string) *Cart {
	sessionID = strings.TrimSpace(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[sessionID]
	if !ok {
		e = &entry{cart: New()}
		s.carts[sessionID] = e
	}
	e.lastSeen = s.clock()
	return e.cart
}

// Drop forgets the cart for sessionID.
func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.carts, strings.TrimSpace(sessionID))
	s.mu.Unlock()
}

// Len returns the number of live carts.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Prune drops carts idle for longer than ttl and returns how many it dropped.
func (s *Sessions) Prune(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock().Add(-ttl)
	dropped := 0
	for id, e := range s.carts {
		if e.lastSeen.Before(cutoff) {
			delete(s.carts, id)
			dropped++
		}
	}
	return dropped
}
