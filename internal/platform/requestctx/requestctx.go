// Package requestctx carries per-request identifiers through context.
package requestctx

import "context"

type requestIDContextKey struct{}

// customerIDContextKey is the context key for the shopper identity.
type customerIDContextKey struct{}

// WithRequestID stores the correlation id of the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the correlation id stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}

// WithCustomerID stores the shopper identifier in context.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, customerIDContextKey{}, customerID)
}

// CustomerIDFromContext returns the shopper identifier stored in context.
func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(customerIDContextKey{}).(string)
	return value
}
