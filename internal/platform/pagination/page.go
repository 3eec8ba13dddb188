package pagination

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
)

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig configures order_by validation.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// ParsePageSize reads a page_size query value, treating blank as the default.
func ParsePageSize(raw string, cfg PageSizeConfig) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ClampPageSize(0, cfg), nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.WithMetadata(errors.CodeInvalidRequest, "invalid page_size", map[string]string{"PageSize": raw})
	}
	return ClampPageSize(value, cfg), nil
}

// NormalizeOrderBy validates order_by and applies defaults.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if orderBy == allowed {
			return orderBy, nil
		}
	}
	return "", errors.WithMetadata(errors.CodeInvalidRequest, "invalid order_by", map[string]string{"OrderBy": orderBy})
}

// EncodeToken returns the opaque token for the page starting at offset.
func EncodeToken(offset int) string {
	if offset <= 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodeToken returns the offset carried by token. Blank tokens start at zero.
func DecodeToken(token string) (int, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, errors.Wrap(errors.CodeInvalidRequest, "invalid page_token", err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, errors.New(errors.CodeInvalidRequest, "invalid page_token")
	}
	return offset, nil
}

// Slice returns the page of items starting at offset and the token for the next one.
func Slice[T any](items []T, offset, pageSize int) ([]T, string) {
	if offset >= len(items) {
		return []T{}, ""
	}
	end := offset + pageSize
	if end >= len(items) {
		return items[offset:], ""
	}
	return items[offset:end], EncodeToken(end)
}
