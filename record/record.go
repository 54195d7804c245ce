// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package record implements the record engine: per-record versioned
// state, path-scoped subscriptions, and optimistic-concurrency apply of
// server UPDATE/PATCH messages. A Record holds a non-owning handle to
// whatever sends on its behalf (the connection core in production, a
// fake in tests) so the two never form a reference cycle.
package record

import (
	"log/slog"
	"sync"
	"time"

	"github.com/deepstream-io/ds-client-go/jsonpath"
	"github.com/deepstream-io/ds-client-go/timer"
	"github.com/deepstream-io/ds-client-go/wire"
)

// Subscription identifies one registered callback so it can be removed
// later; callbacks themselves aren't comparable in Go, so Subscribe
// hands back a token the way timer.Service hands back a Handle.
type Subscription uint64

// Event names published on a Record's own Bus.
const (
	EventReady   = "ready"
	EventError   = "error"
	EventDeleted = "deleted"
)

// rootPath is the key pathSubs uses for subscriptions to the whole
// record (Subscribe("", ...)): jsonpath.Parse("") already addresses the
// root value, so a whole-record subscription falls out of the same
// mechanism as any other path rather than needing its own separate
// container.
const rootPath = ""

type pathSub struct {
	id Subscription
	cb func(value any)
}

// Record is the client-side cache of one server-hosted document: a
// name, a monotone version, arbitrary JSON data, and the set of
// path-scoped subscribers observing it.
type Record struct {
	name   string
	sender sender
	timers *timer.Service
	log    *slog.Logger

	readAckTimeout      time.Duration
	readResponseTimeout time.Duration
	deleteAckTimeout    time.Duration

	mu        sync.Mutex
	version   int
	data      any
	ready     bool
	destroyed bool

	pathSubs map[string][]pathSub
	nextSub  Subscription

	readAckHandle      timer.Handle
	readResponseHandle timer.Handle
	deleteAckHandle    timer.Handle
	discardAckHandle   timer.Handle

	busEffects []func()
	onReady    []func()
	onError    []func(error)
	onDeleted  []func()
}

// sender is the subset of connection.Core a Record needs: fire-and-queue
// send, buffered and flushed the same way the connection core buffers
// outbound sends while offline.
type sender interface {
	Send(msgs ...wire.Message)
}

func newRecord(name string, s sender, timers *timer.Service, log *slog.Logger, readAckTimeout, readResponseTimeout, deleteAckTimeout time.Duration) *Record {
	r := &Record{
		name:                name,
		sender:              s,
		timers:              timers,
		log:                 log,
		readAckTimeout:      readAckTimeout,
		readResponseTimeout: readResponseTimeout,
		deleteAckTimeout:    deleteAckTimeout,
		pathSubs:            make(map[string][]pathSub),
	}
	r.armReadTimeouts()
	return r
}

// armReadTimeouts schedules the two read deadlines on creation:
// readAckTimeout waits for the server to acknowledge
// CREATEORREAD; readResponseTimeout waits for the READ itself. Called
// from newRecord before the Record escapes, so no locking is needed
// yet.
func (r *Record) armReadTimeouts() {
	r.readAckHandle = r.timers.Schedule(r.readAckTimeout, func() {
		r.withLock(func() {
			if r.ready || r.destroyed {
				return
			}
			r.emitErrorLocked(ErrAckTimeout)
		})
	})
	r.readResponseHandle = r.timers.Schedule(r.readResponseTimeout, func() {
		r.withLock(func() {
			if r.ready || r.destroyed {
				return
			}
			r.emitErrorLocked(ErrResponseTimeout)
		})
	})
}

// Name returns the record's name.
func (r *Record) Name() string { return r.name }

// IsReady reports whether the initial READ has been applied.
func (r *Record) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Version returns the current version number.
func (r *Record) Version() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// OnReady, OnError and OnDeleted register lifecycle callbacks. They run
// after the current locked section completes, the same effects-queue
// discipline connection.Core uses, so handlers are free to call back
// into the Record without deadlocking.
func (r *Record) OnReady(cb func())      { r.mu.Lock(); r.onReady = append(r.onReady, cb); r.mu.Unlock() }
func (r *Record) OnError(cb func(error)) { r.mu.Lock(); r.onError = append(r.onError, cb); r.mu.Unlock() }
func (r *Record) OnDeleted(cb func())    { r.mu.Lock(); r.onDeleted = append(r.onDeleted, cb); r.mu.Unlock() }

// withLock runs fn under mu, then runs whatever effects fn queued.
func (r *Record) withLock(fn func()) {
	r.mu.Lock()
	fn()
	effects := r.busEffects
	r.busEffects = nil
	r.mu.Unlock()

	for _, e := range effects {
		e()
	}
}

func (r *Record) emitReadyLocked() {
	for _, cb := range r.onReady {
		cb := cb
		r.busEffects = append(r.busEffects, cb)
	}
}

func (r *Record) emitErrorLocked(err error) {
	r.log.Error("record error", "name", r.name, "err", err)
	for _, cb := range r.onError {
		cb, err := cb, err
		r.busEffects = append(r.busEffects, func() { cb(err) })
	}
}

func (r *Record) emitDeletedLocked() {
	for _, cb := range r.onDeleted {
		cb := cb
		r.busEffects = append(r.busEffects, cb)
	}
}

// Get returns an isolated copy of the value at path (or the whole
// record's data if path is ""). Reading a missing path returns (nil,
// false).
func (r *Record) Get(path string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(path)
}

func (r *Record) getLocked(path string) (any, bool) {
	if path == rootPath {
		return deepClone(r.data), true
	}
	v, ok := jsonpath.Parse(path).GetValue(r.data)
	if !ok {
		return nil, false
	}
	return deepClone(v), true
}

// Set replaces the whole record value. It is a no-op — no network
// traffic, no subscriber notification — if data deep-equals the
// current value. Returns ErrNotReady if the record hasn't completed
// its initial READ yet, and ErrAlreadyDestroyed once the server has
// acknowledged a delete/discard.
func (r *Record) Set(data any) error {
	return r.set(rootPath, data)
}

// SetPath replaces the value at path, materializing missing
// intermediate containers. Same no-op/ready/destroyed rules as Set.
func (r *Record) SetPath(path string, value any) error {
	return r.set(path, value)
}

func (r *Record) set(path string, value any) error {
	var result error
	r.withLock(func() {
		if r.destroyed {
			result = ErrAlreadyDestroyed
			r.emitErrorLocked(result)
			return
		}
		if !r.ready {
			result = ErrNotReady
			r.emitErrorLocked(result)
			return
		}

		current, _ := r.getLocked(path)
		if deepEqual(current, value) {
			return
		}

		changes := r.beginChangeLocked()
		r.version++
		if path == rootPath {
			r.data = deepClone(value)
		} else {
			r.data = jsonpath.Parse(path).SetValue(r.data, deepClone(value))
		}
		r.completeChangeLocked(changes)
		r.sendMutationLocked(path, value)
	})
	return result
}

func (r *Record) sendMutationLocked(path string, value any) {
	if path == rootPath {
		encoded, err := wire.ConvertTyped(value)
		if err != nil {
			r.log.Error("encode record update", "name", r.name, "err", err)
			return
		}
		r.sender.Send(wire.Message{
			Topic:  wire.TopicRecord,
			Action: wire.ActionUpdate,
			Name:   r.name,
			Data:   []string{itoa(r.version), encoded},
		})
		return
	}

	typed, err := wire.ConvertTyped(value)
	if err != nil {
		r.log.Error("encode record patch", "name", r.name, "err", err)
		return
	}
	r.sender.Send(wire.Message{
		Topic:  wire.TopicRecord,
		Action: wire.ActionPatch,
		Name:   r.name,
		Data:   []string{itoa(r.version), path, typed},
	})
}

// Subscribe registers cb to be invoked whenever the value at path
// changes. path == "" subscribes to the whole record. If triggerNow
// and the record is already ready, cb is invoked immediately (outside
// the lock) with the current value.
func (r *Record) Subscribe(path string, triggerNow bool, cb func(value any)) Subscription {
	var id Subscription
	var fireNow bool
	var current any

	r.mu.Lock()
	r.nextSub++
	id = r.nextSub
	r.pathSubs[path] = append(r.pathSubs[path], pathSub{id: id, cb: cb})
	if triggerNow && r.ready {
		fireNow = true
		current, _ = r.getLocked(path)
	}
	r.mu.Unlock()

	if fireNow {
		cb(current)
	}
	return id
}

// Unsubscribe removes the subscription identified by sub. Purely
// local; no message is sent.
func (r *Record) Unsubscribe(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, subs := range r.pathSubs {
		for i, s := range subs {
			if s.id == sub {
				r.pathSubs[path] = append(subs[:i], subs[i+1:]...)
				if len(r.pathSubs[path]) == 0 {
					delete(r.pathSubs, path)
				}
				return
			}
		}
	}
}
