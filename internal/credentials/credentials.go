// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package credentials builds the authParams map passed to
// connection.Core.Authenticate from whatever credential source a
// deployment actually uses: static parameters, a locally-signed JWT, or
// an oauth2.TokenSource-backed bearer token. It also caches the last
// params remembered, so the client package has something to retry with
// after a REAUTHENTICATION_FAILURE without the caller re-deriving them.
package credentials

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Provider builds an authParams map on demand; client.LoginWith calls
// it and logs in with the result. Implementations may block (e.g. an OAuth token
// refresh) so Build takes a context.
type Provider interface {
	Build(ctx context.Context) (map[string]any, error)
}

// Static returns params unchanged; useful for the username/password
// case the spec's happy-path scenario exercises directly.
type Static map[string]any

func (s Static) Build(context.Context) (map[string]any, error) {
	return map[string]any(s), nil
}

// JWTSigner mints a fresh signed JWT on every Build call, placing it
// under the "token" key alongside any static extra claims-adjacent
// fields the server also expects (e.g. a client id).
type JWTSigner struct {
	Key     []byte
	Method  jwt.SigningMethod
	Subject string
	TTL     time.Duration
	Extra   map[string]any
}

func (j JWTSigner) Build(context.Context) (map[string]any, error) {
	method := j.Method
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": j.Subject,
		"iat": now.Unix(),
		"exp": now.Add(j.TTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(method, claims).SignedString(j.Key)
	if err != nil {
		return nil, fmt.Errorf("credentials: sign jwt: %w", err)
	}

	params := map[string]any{"token": signed}
	for k, v := range j.Extra {
		params[k] = v
	}
	return params, nil
}

// OAuthBearer pulls an access token from an oauth2.TokenSource (which
// may itself refresh a cached token) and places it under "token".
type OAuthBearer struct {
	Source oauth2.TokenSource
}

func (o OAuthBearer) Build(context.Context) (map[string]any, error) {
	tok, err := o.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("credentials: fetch oauth2 token: %w", err)
	}
	return map[string]any{"token": tok.AccessToken}, nil
}

// Cache remembers the last successfully built params so a caller (the
// client package, wiring Login's automatic retry) can resend them
// without invoking the underlying Provider again. Modeled on
// mcp.MemorySessionStore's mutex-guarded single-key map.
type Cache struct {
	mu     sync.Mutex
	params map[string]any
}

// NewCache returns an empty Cache.
func NewCache() *Cache { return &Cache{} }

// Remember stores params as the cached credentials.
func (c *Cache) Remember(params map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = params
}

// Load returns the cached credentials, or (nil, false) if nothing has
// been remembered yet.
func (c *Cache) Load() (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.params == nil {
		return nil, false
	}
	return c.params, true
}

// Clear discards the cached credentials (e.g. after a REJECT or
// TOO_MANY_AUTH_ATTEMPTS makes them unusable).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params = nil
}
