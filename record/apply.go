// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"strconv"

	json "github.com/segmentio/encoding/json"

	"github.com/deepstream-io/ds-client-go/jsonpath"
	"github.com/deepstream-io/ds-client-go/wire"
)

// applyReadLocked implements the "on READ(name, version, data)" rule:
// adopt the server's version and data wholesale and become ready. Must
// be called with mu held.
func (r *Record) applyReadLocked(version int, data any) {
	r.cancelReadTimeoutsLocked()
	changes := r.beginChangeLocked()
	r.version = version
	r.data = data
	r.ready = true
	r.completeChangeLocked(changes)
	r.emitReadyLocked()
}

// applyUpdateLocked implements "on UPDATE(name, version, data)": the
// happy path requires version == local+1; on mismatch the record still
// advances to the server's version and applies the data (a convergent
// merge policy, documented in DESIGN.md), but surfaces a
// version-mismatch error so the discrepancy is observable. Must be
// called with mu held.
func (r *Record) applyUpdateLocked(version int, data any) {
	if version != r.version+1 {
		r.emitErrorLocked(ErrVersionMismatch)
	}
	changes := r.beginChangeLocked()
	r.version = version
	r.data = data
	r.completeChangeLocked(changes)
}

// applyPatchLocked implements "on PATCH(name, version, path, typedValue)":
// same versioning rule as UPDATE, applied via setValueAtPath instead of
// a full data replacement. Must be called with mu held.
func (r *Record) applyPatchLocked(version int, path string, value any) {
	if version != r.version+1 {
		r.emitErrorLocked(ErrVersionMismatch)
	}
	changes := r.beginChangeLocked()
	r.version = version
	r.data = jsonpath.Parse(path).SetValue(r.data, value)
	r.completeChangeLocked(changes)
}

func (r *Record) cancelReadTimeoutsLocked() {
	r.timers.Cancel(r.readAckHandle)
	r.timers.Cancel(r.readResponseHandle)
}

// Discard sends UNSUBSCRIBE and tears the record down once the server
// acknowledges it: it actually sends the message and awaits its ack
// (see Engine.applyAck's UNSUBSCRIBE case) before removing all
// listeners, rather than discarding locally only. Bounded by the same
// ack-timeout mechanism Delete uses: if the ack never arrives,
// ErrDiscardTimeout surfaces instead of leaving the record half-torn-down
// forever.
func (r *Record) Discard() {
	r.withLock(func() {
		if r.destroyed {
			return
		}
		r.discardAckHandle = r.timers.Schedule(r.deleteAckTimeout, func() {
			r.withLock(func() {
				if r.destroyed {
					return
				}
				r.emitErrorLocked(ErrDiscardTimeout)
			})
		})
		r.sender.Send(wire.Message{Topic: wire.TopicRecord, Action: wire.ActionUnsubscribe, Name: r.name})
	})
}

// Delete arms deleteAckTimeout and sends DELETE(name); on the server's
// ACK, EventDeleted fires and the record is destroyed.
func (r *Record) Delete() {
	r.withLock(func() {
		if r.destroyed {
			return
		}
		r.deleteAckHandle = r.timers.Schedule(r.deleteAckTimeout, func() {
			r.withLock(func() {
				if r.destroyed {
					return
				}
				r.emitErrorLocked(ErrDeleteTimeout)
			})
		})
		r.sender.Send(wire.Message{Topic: wire.TopicRecord, Action: wire.ActionDelete, Name: r.name})
	})
}

func (r *Record) destroyLocked() {
	r.destroyed = true
	r.ready = false
	r.cancelReadTimeoutsLocked()
	r.timers.Cancel(r.deleteAckHandle)
	r.timers.Cancel(r.discardAckHandle)
	r.pathSubs = make(map[string][]pathSub)
}

// parseRecordPayload decodes the raw JSON data field carried by READ and
// UPDATE messages (unlike PATCH's single typed scalar, this is always a
// full JSON-encoded object/array/value).
func parseRecordPayload(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseVersion(raw string) (int, error) {
	return strconv.Atoi(raw)
}
