package postal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/louisbranch/storefront/internal/platform/errors"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "1000001", want: "1000001", ok: true},
		{input: "100-0001", want: "1000001", ok: true},
		{input: " 100 0001 ", want: "1000001", ok: true},
		{input: "１００－０００１", want: "1000001", ok: true},
		{input: "12345", ok: false},
		{input: "10000011", ok: false},
		{input: "100-000a", ok: false},
		{input: "", ok: false},
	}
	for _, tc := range tests {
		got, err := NormalizeCode(tc.input)
		if !tc.ok {
			require.True(t, errors.HasCode(err, errors.CodePostalInvalidCode), "%q: err = %v", tc.input, err)
			continue
		}
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.want, got, tc.input)
	}
	require.Equal(t, "100-0001", Format("1000001"))
}

func TestLookupNormalizesResult(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("zipcode"); got != "1000001" {
			t.Errorf("zipcode = %q, want 1000001", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":null,"results":[{"address1":"東京都","address2":"千代田区","address3":"千代田","prefcode":"13","zipcode":"1000001"}],"status":200}`))
	}))
	t.Cleanup(server.Close)

	got, err := NewClient(server.URL, server.Client()).Lookup(context.Background(), "100-0001")
	require.NoError(t, err)
	require.Equal(t, Address{PostalCode: "100-0001", Province: "東京都", City: "千代田区", Town: "千代田"}, got)
}

func TestLookupRejectsBeforeNetwork(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.URL, server.Client()).Lookup(context.Background(), "12345")
	require.True(t, errors.HasCode(err, errors.CodePostalInvalidCode), "err = %v", err)
	require.Zero(t, calls.Load())
}

func TestLookupEmptyResultsIsNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":null,"results":null,"status":200}`))
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(server.URL, server.Client()).Lookup(context.Background(), "9999999")
	require.True(t, errors.HasCode(err, errors.CodePostalNotFound), "err = %v", err)
}

func TestLookupFailuresAreUniform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
		{
			name: "directory error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"message":"パラメータ「郵便番号」の桁数が不正です。","results":null,"status":400}`))
			},
		},
	}
	for _, tc := range tests {
		server := httptest.NewServer(tc.handler)
		_, err := NewClient(server.URL, server.Client()).Lookup(context.Background(), "1000001")
		server.Close()
		require.True(t, errors.HasCode(err, errors.CodePostalLookupFailed), "%s: err = %v", tc.name, err)
	}
}

func TestLookupTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, nil).Lookup(context.Background(), "1000001")
	require.True(t, errors.HasCode(err, errors.CodePostalLookupFailed), "err = %v", err)
}
