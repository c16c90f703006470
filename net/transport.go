// Package net bridges TCP connections to the tick loop. Each connection is a
// Session with its own reader and writer goroutines and two bounded packet
// queues; new sessions reach the tick loop through a Handoff.
package net

import "context"

// Transport is a network endpoint with a start/stop lifecycle.
type Transport interface {
	// Start binds and begins serving. It returns once the endpoint is ready.
	Start(ctx context.Context) error
	// Stop closes the endpoint and every connection it owns.
	Stop() error
}
