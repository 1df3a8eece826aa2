// Package session tracks which users are connected and how to reach them.
// The registry is the only mutable state shared across connections; every
// other collaborator is reached through request/response calls.
package session

import (
	"context"
	"errors"

	"forest-tails/server/internal/protocol"
)

// State is the lifecycle state of a channel.
type State int32

const (
	StateOpening State = iota
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// ErrChannelClosed is returned by Send once a channel can no longer deliver.
var ErrChannelClosed = errors.New("session: channel closed")

// Channel is one client's outbound half of a bidirectional connection.
// Implementations must be safe for concurrent Send callers.
type Channel interface {
	// ID identifies the underlying connection, for logs.
	ID() string
	State() State
	// Send queues one push for delivery, honoring ctx for the bound.
	Send(ctx context.Context, p protocol.Push) error
	// Close initiates a graceful shutdown and returns without waiting for
	// the peer.
	Close() error
	// Abort tears the connection down immediately.
	Abort()
	// Done is closed when the connection has fully terminated, however that
	// happened.
	Done() <-chan struct{}
}
