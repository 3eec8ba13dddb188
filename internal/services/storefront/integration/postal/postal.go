// Package postal resolves Japanese postal codes to addresses through a
// zipcloud-compatible directory API.
package postal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/louisbranch/storefront/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/width"
)

// DefaultBaseURL is the public zipcloud search endpoint.
const DefaultBaseURL = "https://zipcloud.ibsnet.co.jp/api/search"

// Address is a normalized lookup result.
type Address struct {
	PostalCode string `json:"postalCode"`
	Province   string `json:"province"`
	City       string `json:"city"`
	Town       string `json:"town"`
}

// Client queries the postal directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. An empty baseURL uses DefaultBaseURL; a nil
// httpClient gets one bounded by the postal lookup timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.PostalLookup}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// NormalizeCode folds full-width characters, strips hyphens and spaces and
// requires exactly seven digits.
func NormalizeCode(code string) (string, error) {
	narrow := width.Narrow.String(code)
	var b strings.Builder
	for _, r := range narrow {
		switch {
		case r == '-' || r == '‐' || r == '−' || r == 'ー' || r == 'ｰ' || unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", invalidCode(code)
		}
	}
	digits := b.String()
	if len(digits) != 7 {
		return "", invalidCode(code)
	}
	return digits, nil
}

// Format renders seven digits as "NNN-NNNN".
func Format(digits string) string {
	if len(digits) != 7 {
		return digits
	}
	return digits[:3] + "-" + digits[3:]
}

func invalidCode(code string) error {
	return errors.WithMetadata(errors.CodePostalInvalidCode, "postal code must have 7 digits", map[string]string{"Code": code})
}

type searchResponse struct {
	Status  int            `json:"status"`
	Message *string        `json:"message"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Zipcode  string `json:"zipcode"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Address3 string `json:"address3"`
}

// Lookup resolves code. Malformed codes fail before any request; transport,
// status and decode failures all report POSTAL_LOOKUP_FAILED.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	digits, err := NormalizeCode(code)
	if err != nil {
		return Address{}, err
	}

	ctx, span := otel.Tracer("storefront/postal").Start(ctx, "postal.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("postal.code", digits))

	address, err := c.lookup(ctx, digits)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
	}
	return address, err
}

func (c *Client) lookup(ctx context.Context, digits string) (Address, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return Address{}, lookupFailed(digits, err)
	}
	query := endpoint.Query()
	query.Set("zipcode", digits)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Address{}, lookupFailed(digits, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Address{}, lookupFailed(digits, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Address{}, lookupFailed(digits, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Address{}, lookupFailed(digits, fmt.Errorf("decode response: %w", err))
	}
	if payload.Status != 0 && payload.Status != http.StatusOK {
		message := ""
		if payload.Message != nil {
			message = *payload.Message
		}
		return Address{}, lookupFailed(digits, fmt.Errorf("directory status %d: %s", payload.Status, message))
	}
	if len(payload.Results) == 0 {
		return Address{}, errors.WithMetadata(errors.CodePostalNotFound, "postal code not found", map[string]string{"Code": Format(digits)})
	}

	first := payload.Results[0]
	return Address{
		PostalCode: Format(digits),
		Province:   first.Address1,
		City:       first.Address2,
		Town:       first.Address3,
	}, nil
}

func lookupFailed(digits string, cause error) error {
	return errors.WrapWithMetadata(errors.CodePostalLookupFailed, "postal lookup failed", map[string]string{"Code": Format(digits)}, cause)
}
