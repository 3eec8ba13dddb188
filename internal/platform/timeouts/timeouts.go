// Package timeouts defines shared timeout constants used across the storefront.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// PostalLookup caps a single request to the postal-code directory.
const PostalLookup = 5 * time.Second

// Notify caps a single order-confirmation publish.
const Notify = 3 * time.Second

// Request caps how long a storefront handler may run.
const Request = 15 * time.Second
