// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport implements the Socket Adapter: the minimal
// open/close/send/receive abstraction the connection core drives. The
// core owns exactly one Adapter per session segment and replaces it
// wholesale on every reconnect or redirect; an Adapter
// never retains queued messages across incarnations.
package transport

import (
	"context"

	"github.com/deepstream-io/ds-client-go/wire"
)

// Adapter is the contract the connection core depends on. Implementations
// must be safe to Open at most once; a fresh Adapter is constructed for
// every new socket incarnation.
type Adapter interface {
	// Open initiates a connection to url. It returns once the underlying
	// dial completes (success or failure); asynchronous transport errors
	// after that point are reported via the OnError/OnClose callbacks,
	// not through Open's return value.
	Open(ctx context.Context, url string) error

	// Send enqueues one or more already-decoded messages for delivery.
	// It does not block on network I/O completing.
	Send(msgs ...wire.Message) error

	// Close closes the underlying connection. It does not wait for the
	// server's CLOSING acknowledgement; the connection core handles the
	// CLOSING exchange itself.
	Close() error

	// OnOpen/OnMessage/OnError/OnClose register the adapter's event
	// callbacks. They must be set before Open is called.
	OnOpen(func())
	OnMessage(func([]wire.Message))
	OnError(func(error))
	OnClose(func())
}

// Factory constructs a fresh Adapter for a new session segment. The
// connection core depends on a Factory rather than a concrete type so
// tests can substitute an in-memory adapter.
type Factory func() Adapter
