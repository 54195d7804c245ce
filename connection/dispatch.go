// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"net/url"
	"time"

	"github.com/deepstream-io/ds-client-go/internal/netutil"
	"github.com/deepstream-io/ds-client-go/wire"
)

// handleSocketMessages processes a batch of incoming messages in
// receipt order; each message fully completes dispatch (including any
// topic handler's own subscriber callbacks) before the next is
// processed. A batch delivered by a superseded adapter (stale epoch) is
// dropped whole rather than dispatched against whatever session segment
// has replaced it.
func (c *Core) handleSocketMessages(epoch int, msgs []wire.Message) {
	var live bool
	c.withLock(func() { live = epoch == c.adapterEpoch })
	if !live {
		return
	}
	for _, m := range msgs {
		c.dispatchOne(m)
	}
}

func (c *Core) dispatchOne(m wire.Message) {
	var handler func(wire.Message)
	var unsolicited bool

	c.withLock(func() {
		c.lastActive = time.Now()

		switch {
		case m.Topic == wire.TopicConnection && m.Action == wire.ActionParseError:
			c.opts.log.Warn("malformed frame dropped", "data", m.Data)
		case m.Topic == wire.TopicConnection && m.Action == wire.ActionPing:
			c.sendControlLocked(wire.Message{Topic: wire.TopicConnection, Action: wire.ActionPong})
		case m.Topic == wire.TopicConnection:
			c.handleConnectionMessageLocked(m)
		case m.Topic == wire.TopicAuth:
			c.handleAuthMessageLocked(m)
		default:
			if h, ok := c.topicHandlers[m.Topic]; ok {
				handler = h
			} else {
				unsolicited = true
			}
		}
	})

	if handler != nil {
		handler(m)
	} else if unsolicited {
		c.opts.bus.Emit(EventUnsolicitedMessage, m)
	}
}

// handleConnectionMessageLocked implements the CHALLENGE/REJECT/REDIRECT/
// ACCEPT/CLOSING leg of the handshake table. Must be called with mu
// held.
func (c *Core) handleConnectionMessageLocked(m wire.Message) {
	switch m.Action {
	case wire.ActionChallenge:
		if c.state != StateAwaitingConnection && c.state != StateChallenging {
			return
		}
		c.setStateLocked(StateChallenging)
		c.sendControlLocked(wire.Message{
			Topic:      wire.TopicConnection,
			Action:     wire.ActionChallengeResponse,
			ParsedData: c.currentURL,
			Data:       []string{c.currentURL},
		})
	case wire.ActionReject:
		c.setStateLocked(StateChallengeDenied)
	case wire.ActionRedirect:
		c.beginRedirectLocked(redirectURL(m))
	case wire.ActionAccept:
		c.setStateLocked(StateAwaitingAuthentication)
		c.maybeReauthenticateLocked()
	case wire.ActionClosing:
		if c.state == StateClosing {
			c.setStateLocked(StateClosed)
		}
	case wire.ActionError:
		c.opts.log.Error("server reported connection error", "data", m.Data)
	}
}

func redirectURL(m wire.Message) string {
	if url, ok := m.ParsedData.(string); ok && url != "" {
		return url
	}
	if len(m.Data) > 0 {
		return m.Data[0]
	}
	return ""
}

// beginRedirectLocked tears down the current socket and opens a new one
// to redirectTo, preserving originalURL so a later reconnect (after the
// redirected server itself goes down) falls back to it. A redirect to a
// non-TLS endpoint is refused unless the target is the local machine,
// since the server issuing REDIRECT would otherwise be able to
// downgrade an encrypted session to plaintext.
func (c *Core) beginRedirectLocked(redirectTo string) {
	if redirectTo == "" {
		return
	}
	if !isSecureRedirectTarget(redirectTo) {
		c.opts.log.Error("refusing insecure redirect", "url", redirectTo)
		c.emitLocked(EventConnectionError, ErrInsecureRedirect)
		return
	}
	c.setStateLocked(StateRedirecting)
	c.currentURL = redirectTo
	oldAdapter := c.adapter
	c.acquireAdapterLocked()
	newAdapter := c.adapter
	newURL := c.currentURL

	go func() {
		if oldAdapter != nil {
			_ = oldAdapter.Close()
		}
		_ = newAdapter.Open(context.Background(), newURL)
	}()
}

// isSecureRedirectTarget reports whether target is safe to redirect to:
// either a wss:// URL, or a URL of any scheme whose host is the local
// machine (convenient for tests and local development).
func isSecureRedirectTarget(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme == "wss" {
		return true
	}
	return netutil.IsLoopback(u.Host)
}
