// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import "time"

// startHeartbeatLocked arms the periodic liveness tick on entering
// OPEN. Must be called with mu held.
func (c *Core) startHeartbeatLocked() {
	if c.heartbeatHandle != 0 {
		c.timers.Cancel(c.heartbeatHandle)
	}
	c.lastActive = time.Now()
	c.heartbeatHandle = c.timers.SetInterval(c.opts.heartbeatInterval, c.handleHeartbeatTick)
}

// handleHeartbeatTick runs on the timer's own goroutine, on every
// heartbeatInterval tick. One missed interval is silent; two missed
// intervals (no traffic for more than 2×heartbeatInterval) emits
// HEARTBEAT_TIMEOUT and moves to RECONNECTING.
func (c *Core) handleHeartbeatTick() {
	var deadAdapter interface{ Close() error }

	c.withLock(func() {
		if c.state != StateOpen {
			return
		}
		idle := time.Since(c.lastActive)
		if idle <= 2*c.opts.heartbeatInterval {
			return
		}
		c.opts.log.Error("heartbeat timeout", "idle", idle)
		c.emitLocked(EventHeartbeatTimeout, idle)
		deadAdapter = c.adapter
		c.retireAdapterLocked()
		c.onUnsolicitedCloseLocked()
	})

	// The remote end may still hold the TCP connection open even though
	// it has stopped responding; close it explicitly rather than leaking
	// the old session segment's socket.
	if deadAdapter != nil {
		go func() { _ = deadAdapter.Close() }()
	}
}
