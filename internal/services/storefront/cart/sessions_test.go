package cart

import (
	"testing"
	"time"

	"github.com/louisbranch/storefront/internal/services/storefront/catalog"
)

func TestSessionsGetCreatesLazily(t *testing.T) {
	t.Parallel()

	sessions := NewSessions()
	first := sessions.Get("sid-1")
	first.Add(shiro, catalog.SizeSmall, 1)

	if again := sessions.Get("sid-1"); again != first {
		t.Fatal("Get returned a different cart for the same session")
	}
	if other := sessions.Get("sid-2"); other == first {
		t.Fatal("Get returned a shared cart for different sessions")
	}
	if got := sessions.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	sessions.Drop("sid-1")
	if got := sessions.Get("sid-1").Totals().Items; got != 0 {
		t.Fatalf("items after drop = %d, want 0", got)
	}
}

func TestSessionsPruneDropsIdleCarts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions := NewSessions()
	sessions.clock = func() time.Time { return now }

	sessions.Get("old")
	now = now.Add(2 * time.Hour)
	sessions.Get("fresh")

	if dropped := sessions.Prune(time.Hour); dropped != 1 {
		t.Fatalf("Prune() = %d, want 1", dropped)
	}
	if got := sessions.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}
