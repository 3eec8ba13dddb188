package id

import (
	"regexp"
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(value) != 36 {
		t.Fatalf("expected 36-character id, got %d (%q)", len(value), value)
	}
	if value[14] != '7' {
		t.Fatalf("expected version 7 id, got %q", value)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		value, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate id %q", value)
		}
		seen[value] = struct{}{}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	before := time.Now().Add(-time.Second)
	value, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	got, err := Time(value)
	if err != nil {
		t.Fatalf("time: %v", err)
	}
	if got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Fatalf("embedded time %v outside expected window", got)
	}
}

func TestTimeRejectsNonV7(t *testing.T) {
	if _, err := Time("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); err == nil {
		t.Fatal("expected version error")
	}
	if _, err := Time("nope"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	value, err := OrderNumber(now)
	if err != nil {
		t.Fatalf("order number: %v", err)
	}
	if !regexp.MustCompile(`^SF-20261018-[0-9A-F]{6}$`).MatchString(value) {
		t.Fatalf("order number = %q, want SF-20261018-XXXXXX", value)
	}
}
