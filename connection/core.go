// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/deepstream-io/ds-client-go/events"
	"github.com/deepstream-io/ds-client-go/internal/dsdebug"
	"github.com/deepstream-io/ds-client-go/timer"
	"github.com/deepstream-io/ds-client-go/transport"
	"github.com/deepstream-io/ds-client-go/wire"
)

// Core is the connection core: single instance per client, owning the
// socket for the lifetime of each session segment and driving the
// connection state machine. All exported methods are safe for
// concurrent use; internally a single mutex stands in for a single
// logical execution context, so transitions and dispatch never
// interleave. User-facing callbacks (event subscribers, the auth
// callback) are always invoked after the mutex is released, queued as
// "effects" during the locked section, so user code is free to call
// back into the Core without deadlocking.
type Core struct {
	opts resolvedOptions

	mu          sync.Mutex
	originalURL string
	currentURL  string
	state       State
	attempts    int
	lastActive  time.Time

	adapter      transport.Adapter
	adapterEpoch int
	timers       *timer.Service

	heartbeatHandle timer.Handle
	reconnectHandle timer.Handle

	pendingAuthParams   map[string]any
	pendingAuthCallback func(success bool, data any)
	reauthenticating    bool

	queue   []wire.Message
	limiter *rate.Limiter

	topicHandlers map[wire.Topic]func(wire.Message)

	rng *rand.Rand

	effects []func()
}

// New constructs a Core for originalURL. If opts.URLParams is non-empty,
// originalURL is first expanded as an RFC 6570 template; a template
// that fails to parse is used verbatim, with the error logged, rather
// than failing construction. The Core starts CLOSED; call Open to
// begin the first session segment.
func New(originalURL string, opts Options) *Core {
	r := opts.resolve()
	if len(opts.URLParams) > 0 {
		if resolved, err := transport.ResolveURL(originalURL, opts.URLParams); err != nil {
			r.log.Error("url template expansion failed, using raw url", "url", originalURL, "err", err)
		} else {
			originalURL = resolved
		}
	}
	return &Core{
		opts:          r,
		originalURL:   originalURL,
		currentURL:    originalURL,
		state:         StateClosed,
		timers:        timer.New(),
		limiter:       newDrainLimiter(r),
		topicHandlers: make(map[wire.Topic]func(wire.Message)),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newDrainLimiter builds the send-queue drain limiter from the
// resolved options, unless DSCLIENT_DEBUG=nodratelimit=1 asks for an
// unthrottled drain, letting flushQueueLocked empty the queue in one
// pass instead of pacing it out.
func newDrainLimiter(r resolvedOptions) *rate.Limiter {
	if dsdebug.Enabled("nodratelimit") {
		return rate.NewLimiter(rate.Inf, r.drainBurst)
	}
	return rate.NewLimiter(r.drainRateLimit, r.drainBurst)
}

// Bus returns the Event Bus lifecycle events and errors are published on.
func (c *Core) Bus() *events.Bus { return c.opts.bus }

// State returns the current connection state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnTopic registers the handler that receives every dispatched message
// for topic. The connection core owns no
// per-topic logic beyond CONNECTION/AUTH/heartbeat; RECORD, RPC, and
// other application topics are routed here.
func (c *Core) OnTopic(topic wire.Topic, handler func(wire.Message)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topicHandlers[topic] = handler
}

// withLock runs fn under mu, then runs whatever effects fn queued via
// emitLocked/deferLocked, after mu has been released.
func (c *Core) withLock(fn func()) {
	c.mu.Lock()
	fn()
	effects := c.effects
	c.effects = nil
	c.mu.Unlock()

	for _, e := range effects {
		e()
	}
}

// emitLocked queues a Bus.Emit to run once the current locked section
// completes. Must be called with mu held.
func (c *Core) emitLocked(event string, payload any) {
	c.effects = append(c.effects, func() { c.opts.bus.Emit(event, payload) })
}

// deferLocked queues an arbitrary effect (e.g. an auth callback
// invocation) to run once the current locked section completes. Must
// be called with mu held.
func (c *Core) deferLocked(fn func()) {
	c.effects = append(c.effects, fn)
}

// Open begins (or restarts) the first session segment: CLOSED --open()-->
// AWAITING_CONNECTION, acquiring a fresh Adapter and dialing currentURL.
func (c *Core) Open() {
	var adapter transport.Adapter
	var url string
	c.withLock(func() {
		c.setStateLocked(StateAwaitingConnection)
		c.acquireAdapterLocked()
		adapter = c.adapter
		url = c.currentURL
	})

	go func() { _ = adapter.Open(context.Background(), url) }()
}

// acquireAdapterLocked replaces c.adapter with a fresh instance wired to
// this Core's callbacks. Must be called with mu held.
//
// Each incarnation is tagged with its own adapterEpoch, captured by the
// callback closures rather than read from c.adapter later: a socket that
// the core itself discards out from under (superseded by a redirect, or
// force-closed after a heartbeat timeout) keeps calling back into an
// Adapter interface it can no longer be asked to forget, so its events
// are instead recognized as stale by epoch mismatch and dropped, rather
// than by mutating the discarded adapter's own callback fields — which
// would race its still-running read loop.
func (c *Core) acquireAdapterLocked() {
	c.adapterEpoch++
	epoch := c.adapterEpoch
	a := c.opts.newAdapter()
	a.OnOpen(func() { c.handleSocketOpen(epoch) })
	a.OnMessage(func(msgs []wire.Message) { c.handleSocketMessages(epoch, msgs) })
	a.OnError(func(err error) { c.handleSocketError(epoch, err) })
	a.OnClose(func() { c.handleSocketClose(epoch) })
	c.adapter = a
}

// retireAdapterLocked bumps adapterEpoch without acquiring a
// replacement, so a dead adapter's own Close (run out-of-band, after
// the core has already decided to reconnect) can no longer be
// processed as a second unsolicited close once the real replacement
// adapter is eventually acquired by the reconnect timer. Must be
// called with mu held.
func (c *Core) retireAdapterLocked() {
	c.adapterEpoch++
}

func (c *Core) handleSocketOpen(epoch int) {
	c.withLock(func() {
		if epoch != c.adapterEpoch {
			return
		}
		// REDIRECTING --new socket open--> AWAITING_CONNECTION;
		// AWAITING_CONNECTION itself was already entered synchronously by
		// Open/handleReconnectTimer before the dial started, so this is a
		// no-op transition in that case.
		if c.state == StateRedirecting {
			c.setStateLocked(StateAwaitingConnection)
		}
		// Liveness only starts counting once the socket is live, to avoid
		// an immediate spurious heartbeat timeout while awaiting CHALLENGE.
		c.lastActive = time.Now()
	})
}

func (c *Core) handleSocketError(epoch int, err error) {
	c.withLock(func() {
		if epoch != c.adapterEpoch {
			return
		}
		c.opts.log.Error("connection error", "state", c.state, "err", err)
		c.emitLocked(EventConnectionError, err)
	})
}

func (c *Core) handleSocketClose(epoch int) {
	c.withLock(func() {
		if epoch != c.adapterEpoch {
			return
		}
		c.onUnsolicitedCloseLocked()
	})
}

// onUnsolicitedCloseLocked implements the "ANY(open-ish) --socket.onclose/
// onerror--> RECONNECTING" transition, except from CLOSING (graceful,
// handled separately) and from states that are already terminal.
func (c *Core) onUnsolicitedCloseLocked() {
	c.timers.CancelAll()

	switch c.state {
	case StateClosing:
		c.setStateLocked(StateClosed)
		return
	case StateChallengeDenied, StateTooManyAuthAttempts, StateAuthenticationTimeout, StateClosed:
		return
	}

	c.beginReconnectLocked()
}

// Close initiates a graceful shutdown: OPEN --close()--> CLOSING, then
// CLOSING --recv CLOSING, socket.onclose--> CLOSED with no reconnect.
func (c *Core) Close() error {
	var adapter transport.Adapter
	var skip bool
	c.withLock(func() {
		if c.state.terminal() || c.state == StateClosing {
			skip = true
			return
		}
		c.setStateLocked(StateClosing)
		c.sendControlLocked(wire.Message{Topic: wire.TopicConnection, Action: wire.ActionClosing})
		adapter = c.adapter
	})
	if skip || adapter == nil {
		return nil
	}
	return adapter.Close()
}

// setStateLocked performs a state transition, emitting
// CONNECTION_STATE_CHANGED exactly once iff the state actually changes.
// Must be called with mu held.
func (c *Core) setStateLocked(next State) {
	if c.state == next {
		return
	}
	c.state = next
	c.emitLocked(EventConnectionStateChanged, next)
}
