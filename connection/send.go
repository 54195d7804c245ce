// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"time"

	"github.com/deepstream-io/ds-client-go/wire"
)

// Send submits msgs for delivery. Messages submitted before OPEN, or
// while RECONNECTING, are queued and flushed in submission order once
// OPEN. The queue is bounded (Options.SendQueueSize); once full, the
// oldest queued message is dropped rather than growing without limit or
// blocking the caller (see DESIGN.md).
func (c *Core) Send(msgs ...wire.Message) {
	c.withLock(func() {
		c.sendLocked(msgs...)
	})
}

// sendLocked must be called with mu held.
func (c *Core) sendLocked(msgs ...wire.Message) {
	if c.state == StateOpen && c.adapter != nil {
		if err := c.adapter.Send(msgs...); err != nil {
			c.opts.log.Error("send failed", "err", err)
		}
		return
	}
	c.enqueueLocked(msgs...)
}

// sendControlLocked transmits a connection-handshake or liveness message
// (CHALLENGE_RESPONSE, AUTH_REQUEST, PONG, CLOSING) directly on whatever
// adapter is currently live, regardless of logical state. These messages
// are themselves how the state machine reaches OPEN, so routing them
// through sendLocked's OPEN-gated queue would deadlock the handshake:
// the queue only drains once OPEN, and OPEN is never reached because the
// messages required to get there never leave it. Must be called with mu
// held.
func (c *Core) sendControlLocked(msgs ...wire.Message) {
	if c.adapter == nil {
		return
	}
	if err := c.adapter.Send(msgs...); err != nil {
		c.opts.log.Error("send failed", "err", err)
	}
}

func (c *Core) enqueueLocked(msgs ...wire.Message) {
	for _, m := range msgs {
		if len(c.queue) >= c.opts.sendQueueSize {
			c.queue = c.queue[1:]
		}
		c.queue = append(c.queue, m)
	}
}

// flushQueueLocked drains the send queue in submission order onto the
// newly OPEN adapter, throttled by the drain rate limiter so a long
// backlog accumulated during RECONNECTING doesn't burst the fresh
// socket. Must be called with mu held.
func (c *Core) flushQueueLocked() {
	if c.state != StateOpen || c.adapter == nil {
		return
	}
	for len(c.queue) > 0 {
		if !c.limiter.Allow() {
			// Out of burst budget for now; resume shortly. Scheduling a
			// follow-up timer (rather than blocking this locked section)
			// keeps the core responsive to other work in the meantime.
			c.timers.Schedule(50*time.Millisecond, c.handleFlushQueueTimer)
			return
		}
		m := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.adapter.Send(m); err != nil {
			c.opts.log.Error("flush send failed", "err", err)
		}
	}
}

func (c *Core) handleFlushQueueTimer() {
	c.withLock(func() {
		c.flushQueueLocked()
	})
}
