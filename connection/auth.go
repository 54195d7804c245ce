// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import "github.com/deepstream-io/ds-client-go/wire"

// Authenticate sends AUTH.REQUEST and arranges for callback to be
// invoked with the result. It is only valid in AWAITING_AUTHENTICATION;
// params must be a non-nil object map, or this returns
// ErrInvalidAuthenticationParams synchronously without invoking
// callback or sending anything.
func (c *Core) Authenticate(params map[string]any, callback func(success bool, data any)) error {
	if params == nil {
		return ErrInvalidAuthenticationParams
	}

	var result error
	c.withLock(func() {
		if c.state != StateAwaitingAuthentication {
			result = ErrNotAwaitingAuthentication
			return
		}
		c.pendingAuthParams = params
		c.pendingAuthCallback = callback
		c.setStateLocked(StateAuthenticating)
		c.sendAuthRequestLocked(params)
	})
	return result
}

func (c *Core) sendAuthRequestLocked(params map[string]any) {
	encoded, err := wire.ConvertTyped(params)
	if err != nil {
		c.opts.log.Error("encode auth params", "err", err)
		return
	}
	c.sendControlLocked(wire.Message{Topic: wire.TopicAuth, Action: wire.ActionAuthRequest, Data: []string{encoded}})
}

// maybeReauthenticateLocked re-sends AUTH.REQUEST with the params most
// recently passed to Authenticate once ACCEPT is received after a reconnect,
// letting the session recover transparently. Emits
// REAUTHENTICATION_FAILURE if the server later rejects the cached
// credentials outright. Must be called with mu held.
func (c *Core) maybeReauthenticateLocked() {
	if c.pendingAuthParams == nil {
		return
	}
	c.reauthenticating = true
	c.setStateLocked(StateAuthenticating)
	c.sendAuthRequestLocked(c.pendingAuthParams)
}

// handleAuthMessageLocked implements the AUTH leg of the connection
// handshake table. Must be called with mu held.
func (c *Core) handleAuthMessageLocked(m wire.Message) {
	switch m.Action {
	case wire.ActionAuthSuccessful:
		wasReauth := c.reauthenticating
		c.attempts = 0
		c.reauthenticating = false
		c.setStateLocked(StateOpen)
		c.startHeartbeatLocked()
		c.flushQueueLocked()
		// The login callback fires once, for the AUTH_SUCCESSFUL that
		// answers the original authenticate() call; an automatic
		// reauthentication after a reconnect resends pendingAuthParams
		// but must not invoke that same callback a second time.
		if cb := c.pendingAuthCallback; cb != nil && !wasReauth {
			data := parseAuthData(m)
			c.pendingAuthCallback = nil
			c.deferLocked(func() { c.invokeAuthCallback(cb, true, data) })
		}
	case wire.ActionAuthUnsuccessful:
		wasReauth := c.reauthenticating
		c.reauthenticating = false
		c.setStateLocked(StateAwaitingAuthentication)
		// A failure during automatic reauthentication surfaces as
		// REAUTHENTICATION_FAILURE instead, not a callback invocation —
		// the original authenticate() call already returned long ago.
		if cb := c.pendingAuthCallback; cb != nil && !wasReauth {
			data := parseAuthData(m)
			c.deferLocked(func() { c.invokeAuthCallback(cb, false, data) })
		}
		if wasReauth {
			c.emitLocked(EventReauthenticationFailure, m)
		}
	case wire.ActionTooManyAuthAttempts:
		wasReauth := c.reauthenticating
		c.setStateLocked(StateTooManyAuthAttempts)
		if wasReauth {
			c.emitLocked(EventReauthenticationFailure, m)
		}
	}
}

func parseAuthData(m wire.Message) any {
	if len(m.Data) == 0 {
		return nil
	}
	v, err := wire.ParseTyped(m.Data[0])
	if err != nil {
		return m.Data[0]
	}
	return v
}

// invokeAuthCallback runs outside of the mutex; a panic here is caught
// and logged so it cannot corrupt the core.
func (c *Core) invokeAuthCallback(cb func(bool, any), success bool, data any) {
	defer func() {
		if r := recover(); r != nil {
			c.opts.log.Error("auth callback panicked", "recover", r)
		}
	}()
	cb(success, data)
}
