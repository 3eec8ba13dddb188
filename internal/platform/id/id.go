// Package id generates identifiers for storefront records.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a time-ordered unique identifier (UUIDv7, canonical text form).
func NewID() (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return value.String(), nil
}

// Time extracts the creation timestamp embedded in an identifier made by NewID.
func Time(value string) (time.Time, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse id: %w", err)
	}
	if parsed.Version() != 7 {
		return time.Time{}, fmt.Errorf("id %q is not time-ordered", value)
	}
	var ms int64
	for _, b := range parsed[:6] {
		ms = ms<<8 | int64(b)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// OrderNumber formats a human-facing order number such as "SF-20261018-3F9A2C".
func OrderNumber(now time.Time) (string, error) {
	value, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	raw := strings.ReplaceAll(value.String(), "-", "")
	return fmt.Sprintf("SF-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(raw[len(raw)-6:])), nil
}
