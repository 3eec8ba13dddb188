package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/id"
	"github.com/louisbranch/storefront/internal/platform/requestctx"
)

// SessionCookieName carries the signed shopper session.
const SessionCookieName = "sf_session"

// DefaultSessionTTL is how long an issued session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

const sessionIssuer = "storefront"

// Identity is the shopper behind a request: an anonymous browsing session,
// optionally bound to a customer account.
type Identity struct {
	SessionID  string `json:"sessionId"`
	CustomerID string `json:"customerId,omitempty"`
}

// Owner is the key per-shopper data is filed under: the customer id when
// signed in, else the session id.
func (i Identity) Owner() string {
	if strings.TrimSpace(i.CustomerID) != "" {
		return i.CustomerID
	}
	return "guest-" + i.SessionID
}

type sessionClaims struct {
	CustomerID string `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

type identityContextKey struct{}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	clock  func() time.Time
}

// NewSessions builds a session signer. The secret must be non-empty.
func NewSessions(secret string, ttl time.Duration, secureCookie bool) (*Sessions, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secureCookie, clock: time.Now}, nil
}

// Issue signs identity into a token.
func (s *Sessions) Issue(identity Identity) (string, error) {
	if strings.TrimSpace(identity.SessionID) == "" {
		return "", fmt.Errorf("session id is required")
	}
	now := s.clock()
	claims := sessionClaims{
		CustomerID: strings.TrimSpace(identity.CustomerID),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   identity.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Parse verifies token and returns its identity.
func (s *Sessions) Parse(token string) (Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil {
		return Identity{}, errors.Wrap(errors.CodeUnauthorized, "invalid session", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, errors.New(errors.CodeUnauthorized, "session has no subject")
	}
	return Identity{SessionID: claims.Subject, CustomerID: claims.CustomerID}, nil
}

// Start issues a token for identity and sets it as the session cookie.
func (s *Sessions) Start(w http.ResponseWriter, identity Identity) error {
	token, err := s.Issue(identity)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware attaches the request's identity, starting a fresh guest
// session when the cookie is missing or invalid.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity Identity
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			identity, err = s.Parse(cookie.Value)
			if err != nil {
				identity = Identity{}
			}
		}
		if identity.SessionID == "" {
			sessionID, err := id.NewID()
			if err != nil {
				writeError(w, r, errors.Wrap(errors.CodeUnknown, "new session id", err))
				return
			}
			identity = Identity{SessionID: sessionID}
			if err := s.Start(w, identity); err != nil {
				writeError(w, r, errors.Wrap(errors.CodeUnknown, "start session", err))
				return
			}
		}
		ctx := requestctx.WithCustomerID(withIdentity(r.Context(), identity), identity.Owner())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity set by Sessions.Middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
