// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import "errors"

// Errors surfaced on a Record's own event bus via EventError, and
// returned synchronously by Set/SetPath where the call is rejected
// before the record is mutated or anything is sent.
var (
	ErrNotReady         = errors.New("record: not ready")
	ErrAlreadyDestroyed = errors.New("record: already destroyed")
	ErrAckTimeout       = errors.New("record: ack timeout")
	ErrResponseTimeout  = errors.New("record: response timeout")
	ErrDeleteTimeout    = errors.New("record: delete ack timeout")
	ErrDiscardTimeout   = errors.New("record: discard ack timeout")
	ErrVersionMismatch  = errors.New("record: version mismatch")
)
