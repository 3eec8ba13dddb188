package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/louisbranch/storefront/internal/platform/errors"
)

// requireAdmin guards next behind a static bearer token. An empty
// configured token disables the admin surface.
func requireAdmin(token string, next http.HandlerFunc) http.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			writeError(w, r, errors.New(errors.CodeUnauthorized, "admin access disabled"))
			return
		}
		presented, ok := bearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="storefront-admin"`)
			writeError(w, r, errors.New(errors.CodeUnauthorized, "admin token required"))
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
