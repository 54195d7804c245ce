// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/deepstream-io/ds-client-go/events"
	"github.com/deepstream-io/ds-client-go/transport"
)

// Options configures a Core. Every duration/count has a documented zero
// value, resolved by resolve(), which replaces each zero field with its
// default; non-zero values are used as given.
type Options struct {
	// HeartbeatInterval is the liveness tick period once OPEN. Zero uses
	// DefaultHeartbeatInterval.
	HeartbeatInterval time.Duration

	// ReconnectIntervalIncrement is the per-attempt backoff step. Zero
	// uses DefaultReconnectIntervalIncrement.
	ReconnectIntervalIncrement time.Duration

	// MaxReconnectInterval caps the backoff delay. Zero uses
	// DefaultMaxReconnectInterval.
	MaxReconnectInterval time.Duration

	// MaxReconnectAttempts terminates reconnection after this many
	// consecutive failed attempts. Zero uses DefaultMaxReconnectAttempts.
	MaxReconnectAttempts int

	// SendQueueSize bounds the queue of messages submitted before OPEN
	// or while RECONNECTING (see DESIGN.md's resolution of the open
	// queue-behavior question). Zero uses DefaultSendQueueSize;
	// enqueuing past the bound drops the oldest queued message.
	SendQueueSize int

	// URLParams, if non-empty, expands URL as an RFC 6570 template
	// before dialing (e.g. "wss://{host}/{+authToken}") — for
	// deployments that fold per-connection routing or credentials into
	// the dialed URL. A URL with no template expressions is unaffected.
	URLParams map[string]string

	// DrainRateLimit and DrainBurst bound how fast a queued backlog is
	// flushed onto a freshly opened socket after a reconnect. Zero uses
	// DefaultDrainRateLimit/DefaultDrainBurst.
	DrainRateLimit rate.Limit
	DrainBurst     int

	// NewAdapter constructs a fresh transport.Adapter for each session
	// segment. Required.
	NewAdapter transport.Factory

	// Bus is the Event Bus events are published on. If nil, a private
	// Bus is created.
	Bus *events.Bus

	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

const (
	DefaultHeartbeatInterval          = 30 * time.Second
	DefaultReconnectIntervalIncrement = 4 * time.Second
	DefaultMaxReconnectInterval       = 30 * time.Second
	DefaultMaxReconnectAttempts       = 5
	DefaultSendQueueSize              = 1000
	DefaultDrainRateLimit rate.Limit  = 200 // messages/sec
	DefaultDrainBurst                 = 50
)

type resolvedOptions struct {
	heartbeatInterval          time.Duration
	reconnectIntervalIncrement time.Duration
	maxReconnectInterval       time.Duration
	maxReconnectAttempts       int
	sendQueueSize              int
	drainRateLimit             rate.Limit
	drainBurst                 int
	newAdapter                 transport.Factory
	bus                        *events.Bus
	log                        *slog.Logger
}

func (o Options) resolve() resolvedOptions {
	r := resolvedOptions{
		heartbeatInterval:          o.HeartbeatInterval,
		reconnectIntervalIncrement: o.ReconnectIntervalIncrement,
		maxReconnectInterval:       o.MaxReconnectInterval,
		maxReconnectAttempts:       o.MaxReconnectAttempts,
		sendQueueSize:              o.SendQueueSize,
		drainRateLimit:             o.DrainRateLimit,
		drainBurst:                 o.DrainBurst,
		newAdapter:                 o.NewAdapter,
		bus:                        o.Bus,
		log:                        o.Logger,
	}
	if r.heartbeatInterval == 0 {
		r.heartbeatInterval = DefaultHeartbeatInterval
	}
	if r.reconnectIntervalIncrement == 0 {
		r.reconnectIntervalIncrement = DefaultReconnectIntervalIncrement
	}
	if r.maxReconnectInterval == 0 {
		r.maxReconnectInterval = DefaultMaxReconnectInterval
	}
	if r.maxReconnectAttempts == 0 {
		r.maxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if r.sendQueueSize == 0 {
		r.sendQueueSize = DefaultSendQueueSize
	}
	if r.drainRateLimit == 0 {
		r.drainRateLimit = DefaultDrainRateLimit
	}
	if r.drainBurst == 0 {
		r.drainBurst = DefaultDrainBurst
	}
	if r.bus == nil {
		r.bus = events.New(r.log)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}
