package requestctx

import (
	"context"
	"testing"
)

func TestCustomerIDFromContextRoundTrip(t *testing.T) {
	ctx := WithCustomerID(context.Background(), "cust-42")
	got := CustomerIDFromContext(ctx)
	if got != "cust-42" {
		t.Fatalf("CustomerIDFromContext = %q, want %q", got, "cust-42")
	}
}

func TestRequestIDFromContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(WithCustomerID(context.Background(), "cust-1"), "req-7")
	if got := RequestIDFromContext(ctx); got != "req-7" {
		t.Fatalf("RequestIDFromContext = %q, want %q", got, "req-7")
	}
	if got := CustomerIDFromContext(ctx); got != "cust-1" {
		t.Fatalf("CustomerIDFromContext = %q, want %q", got, "cust-1")
	}
}

func TestFromContextEmpty(t *testing.T) {
	if got := CustomerIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty customer id, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestFromContextNil(t *testing.T) {
	if got := CustomerIDFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
	if got := RequestIDFromContext(nil); got != "" {
		t.Fatalf("expected empty string for nil context, got %q", got)
	}
}

func TestWithCustomerIDNilContext(t *testing.T) {
	ctx := WithCustomerID(nil, "cust-99")
	if ctx == nil {
		t.Fatalf("expected non-nil context")
	}
	if got := CustomerIDFromContext(ctx); got != "cust-99" {
		t.Fatalf("CustomerIDFromContext = %q, want %q", got, "cust-99")
	}
}
