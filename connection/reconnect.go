// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"time"

	"github.com/deepstream-io/ds-client-go/transport"
)

// beginReconnectLocked implements the reconnection policy: terminate if
// attempts has already reached the configured max, otherwise increment
// attempts and schedule a reopen after a backoff delay. Checking before
// incrementing means the terminal emission carries the configured max
// itself, not max+1. Must be called with mu held.
func (c *Core) beginReconnectLocked() {
	if c.attempts >= c.opts.maxReconnectAttempts {
		c.emitLocked(EventMaxReconnectionAttemptsReached, c.attempts)
		c.setStateLocked(StateClosed)
		return
	}
	c.attempts++

	c.setStateLocked(StateReconnecting)
	delay := c.computeBackoffLocked()
	c.reconnectHandle = c.timers.Schedule(delay, c.handleReconnectTimer)
}

// computeBackoffLocked computes min(maxReconnectInterval,
// reconnectIntervalIncrement×attempts), with jitter of up to half that
// base delay added on top (then re-capped), to avoid many clients
// reconnecting in lockstep after a shared server restart. Must be
// called with mu held.
func (c *Core) computeBackoffLocked() time.Duration {
	base := c.opts.reconnectIntervalIncrement * time.Duration(c.attempts)
	if base > c.opts.maxReconnectInterval {
		base = c.opts.maxReconnectInterval
	}

	var jitter time.Duration
	if base > 0 {
		jitter = time.Duration(c.rng.Int63n(int64(base)/2 + 1))
	}

	delay := base + jitter
	if delay > c.opts.maxReconnectInterval {
		delay = c.opts.maxReconnectInterval
	}
	return delay
}

// handleReconnectTimer fires after the backoff delay: RECONNECTING
// --timer fires--> AWAITING_CONNECTION (new socket to originalUrl).
func (c *Core) handleReconnectTimer() {
	var adapter transport.Adapter
	var url string

	c.withLock(func() {
		if c.state != StateReconnecting {
			return
		}
		c.setStateLocked(StateAwaitingConnection)
		c.currentURL = c.originalURL
		c.acquireAdapterLocked()
		adapter = c.adapter
		url = c.currentURL
	})

	if adapter != nil {
		go func() { _ = adapter.Open(context.Background(), url) }()
	}
}
