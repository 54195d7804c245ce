// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"log/slog"
	"time"
)

// Options configures an Engine. Zero values resolve to the defaults
// below, the same zero-means-default pattern connection.Options uses.
type Options struct {
	// ReadAckTimeout bounds how long getRecord waits for the server to
	// acknowledge CREATEORREAD. Zero uses DefaultReadAckTimeout.
	ReadAckTimeout time.Duration

	// ReadResponseTimeout bounds how long getRecord waits for the READ
	// response itself, counted from record creation like ReadAckTimeout.
	// Zero uses DefaultReadResponseTimeout.
	ReadResponseTimeout time.Duration

	// DeleteAckTimeout bounds how long delete() waits for its ACK.
	// Zero uses DefaultDeleteAckTimeout.
	DeleteAckTimeout time.Duration

	// Logger receives structured diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

const (
	DefaultReadAckTimeout       = 2 * time.Second
	DefaultReadResponseTimeout  = 10 * time.Second
	DefaultDeleteAckTimeout     = 5 * time.Second
)

type resolvedOptions struct {
	readAckTimeout      time.Duration
	readResponseTimeout time.Duration
	deleteAckTimeout    time.Duration
	log                 *slog.Logger
}

func (o Options) resolve() resolvedOptions {
	r := resolvedOptions{
		readAckTimeout:      o.ReadAckTimeout,
		readResponseTimeout: o.ReadResponseTimeout,
		deleteAckTimeout:    o.DeleteAckTimeout,
		log:                 o.Logger,
	}
	if r.readAckTimeout == 0 {
		r.readAckTimeout = DefaultReadAckTimeout
	}
	if r.readResponseTimeout == 0 {
		r.readResponseTimeout = DefaultReadResponseTimeout
	}
	if r.deleteAckTimeout == 0 {
		r.deleteAckTimeout = DefaultDeleteAckTimeout
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	return r
}
