// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import "errors"

// Sentinel errors for transport/auth/protocol error kinds.
// Authenticate returns ErrInvalidAuthenticationParams and
// ErrNotAwaitingAuthentication synchronously; ErrInsecureRedirect is
// published as the payload of CONNECTION_ERROR on the Event Bus.
// ErrIsClosed and ErrClientOffline are not returned by any method of
// this package. Other asynchronous error kinds (HEARTBEAT_TIMEOUT,
// MAX_RECONNECTION_ATTEMPTS_REACHED, ...) are Event Bus events; see the
// Event* constants in state.go.
var (
	ErrIsClosed                    = errors.New("connection: is closed")
	ErrInvalidAuthenticationParams = errors.New("connection: authParams must be an object map")
	ErrNotAwaitingAuthentication   = errors.New("connection: authenticate called outside AWAITING_AUTHENTICATION")
	ErrClientOffline               = errors.New("connection: client offline")
	ErrInsecureRedirect            = errors.New("connection: refusing redirect to a non-TLS, non-local endpoint")
)
