// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package credentials

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

func TestStaticBuildReturnsParamsUnchanged(t *testing.T) {
	s := Static{"password": "123456"}
	got, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got["password"] != "123456" {
		t.Errorf("want password=123456, got %+v", got)
	}
}

func TestJWTSignerProducesVerifiableToken(t *testing.T) {
	signer := JWTSigner{Key: []byte("secret"), Subject: "user-1", TTL: time.Minute, Extra: map[string]any{"clientId": "abc"}}
	params, err := signer.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if params["clientId"] != "abc" {
		t.Errorf("want extra claim carried through, got %+v", params)
	}

	raw, ok := params["token"].(string)
	if !ok {
		t.Fatalf("want token string, got %+v", params)
	}
	parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("want parseable/valid token, err=%v valid=%v", err, parsed != nil && parsed.Valid)
	}
	sub, _ := parsed.Claims.GetSubject()
	if sub != "user-1" {
		t.Errorf("want sub=user-1, got %q", sub)
	}
}

type staticTokenSource struct{ tok *oauth2.Token }

func (s staticTokenSource) Token() (*oauth2.Token, error) { return s.tok, nil }

func TestOAuthBearerExtractsAccessToken(t *testing.T) {
	bearer := OAuthBearer{Source: staticTokenSource{tok: &oauth2.Token{AccessToken: "at-123"}}}
	params, err := bearer.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if params["token"] != "at-123" {
		t.Errorf("want token=at-123, got %+v", params)
	}
}

func TestCacheRememberLoadClear(t *testing.T) {
	c := NewCache()
	if _, ok := c.Load(); ok {
		t.Fatal("want empty cache to report not-ok")
	}

	c.Remember(map[string]any{"password": "x"})
	got, ok := c.Load()
	if !ok || got["password"] != "x" {
		t.Fatalf("want cached password=x, got %+v ok=%v", got, ok)
	}

	c.Clear()
	if _, ok := c.Load(); ok {
		t.Fatal("want cache empty after Clear")
	}
}
