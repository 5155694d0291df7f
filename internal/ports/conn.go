// Package ports holds the contracts transports implement to drive the gateway.
package ports

import "context"

// Conn is one live client connection as seen by the gateway. Send must be
// safe to call from multiple goroutines and must not block indefinitely.
type Conn interface {
	Send(ctx context.Context, data []byte) error
	Close() error
}
