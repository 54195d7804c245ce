// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package client exposes the minimal public surface of this module: a
// single Client wiring together the connection core and the record
// engine, the way a consuming application is meant to talk to this
// module rather than reaching into connection/record directly.
package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/deepstream-io/ds-client-go/connection"
	"github.com/deepstream-io/ds-client-go/events"
	"github.com/deepstream-io/ds-client-go/internal/credentials"
	"github.com/deepstream-io/ds-client-go/record"
	"github.com/deepstream-io/ds-client-go/transport"
	"github.com/deepstream-io/ds-client-go/wire"
)

// Options configures a Client. Connection and Record carry through to
// connection.Options and record.Options unchanged, except that New
// fills in a WebSocket Connection.NewAdapter and a default logger when
// they are unset. The URL itself is New's own argument.
type Options struct {
	Connection connection.Options
	Record     record.Options
}

// Client is a single connection to a server: one Connection Core
// session and one Record Engine sharing it, plus whatever convenience
// wiring a consuming application doesn't want to repeat (default
// WebSocket adapter if none is supplied, a shared logger).
type Client struct {
	core   *connection.Core
	engine *record.Engine

	credMu   sync.Mutex
	provider credentials.Provider
	creds    *credentials.Cache
}

// New constructs a Client for url. The connection is not opened until
// Open is called, mirroring connection.Core's own CLOSED-until-Open()
// contract.
func New(url string, opts Options) *Client {
	if opts.Connection.NewAdapter == nil {
		opts.Connection.NewAdapter = func() transport.Adapter { return transport.NewWebSocketAdapter() }
	}
	if opts.Connection.Logger == nil {
		opts.Connection.Logger = slog.Default()
	}
	if opts.Record.Logger == nil {
		opts.Record.Logger = opts.Connection.Logger
	}

	core := connection.New(url, opts.Connection)
	engine := record.New(core, opts.Record)
	engine.Attach(core)

	c := &Client{core: core, engine: engine, creds: credentials.NewCache()}
	core.Bus().On(connection.EventReauthenticationFailure, c.handleReauthenticationFailure)
	return c
}

// Open begins the connection: CLOSED --open()--> AWAITING_CONNECTION.
func (c *Client) Open() { c.core.Open() }

// Login proxies to the connection core's Authenticate. The params are
// also remembered in the credentials cache, so a subsequent
// REAUTHENTICATION_FAILURE (there being no Provider to rebuild from)
// still has something on file to retry.
func (c *Client) Login(authParams map[string]any, callback func(success bool, data any)) error {
	c.creds.Remember(authParams)
	return c.core.Authenticate(authParams, callback)
}

// LoginWith builds authParams from provider (a static map, a signed
// JWT, or an OAuth bearer token — see internal/credentials) and logs in
// with the result. provider and the built params are remembered so a
// later REAUTHENTICATION_FAILURE can rebuild fresh credentials instead
// of resending ones the server just rejected.
func (c *Client) LoginWith(ctx context.Context, provider credentials.Provider, callback func(success bool, data any)) error {
	params, err := provider.Build(ctx)
	if err != nil {
		return err
	}
	c.credMu.Lock()
	c.provider = provider
	c.credMu.Unlock()
	c.creds.Remember(params)
	return c.core.Authenticate(params, callback)
}

// handleReauthenticationFailure responds to the core's
// REAUTHENTICATION_FAILURE event. The core itself already resent the
// last params it had on file verbatim before emitting this; if those
// came from a Provider they may simply be expired (a JWT past its TTL,
// a stale OAuth token), so this rebuilds fresh ones and retries once.
// TOO_MANY_AUTH_ATTEMPTS means the credentials are unusable outright,
// so the cache is cleared instead of retried.
func (c *Client) handleReauthenticationFailure(payload any) {
	if m, ok := payload.(wire.Message); ok && m.Action == wire.ActionTooManyAuthAttempts {
		c.creds.Clear()
		return
	}

	c.credMu.Lock()
	provider := c.provider
	c.credMu.Unlock()

	if provider != nil {
		if params, err := provider.Build(context.Background()); err == nil {
			c.creds.Remember(params)
			_ = c.core.Authenticate(params, nil)
			return
		}
	}
	if params, ok := c.creds.Load(); ok {
		_ = c.core.Authenticate(params, nil)
	}
}

// Close proxies to the connection core's graceful Close.
func (c *Client) Close() error { return c.core.Close() }

// On subscribes handler to a connection-state value or lifecycle event
// name.
func (c *Client) On(event string, handler events.Handler) { c.core.Bus().On(event, handler) }

// Off removes every handler registered for event.
func (c *Client) Off(event string) { c.core.Bus().Off(event) }

// State returns the connection's current ConnectionState.
func (c *Client) State() connection.State { return c.core.State() }

// Record returns a handle to the named record, creating it on first
// reference.
func (c *Client) Record(name string) *record.Record { return c.engine.GetRecord(name) }
