// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"sync"

	"github.com/deepstream-io/ds-client-go/timer"
	"github.com/deepstream-io/ds-client-go/wire"
)

// Engine owns every Record for one Connection: at most one Record
// exists per name. It registers itself on the connection core's RECORD
// topic and routes incoming messages to the named Record by looking it
// up, rather than the core holding a direct child list, so the core and
// its records never form a reference cycle.
type Engine struct {
	opts   resolvedOptions
	sender sender
	timers *timer.Service

	mu      sync.Mutex
	records map[string]*Record
}

// New constructs an Engine that sends through s (ordinarily a
// *connection.Core). Call Attach (or pass Engine.HandleMessage directly
// to core.OnTopic) to wire it to a live connection.
func New(s sender, opts Options) *Engine {
	return &Engine{
		opts:    opts.resolve(),
		sender:  s,
		timers:  timer.New(),
		records: make(map[string]*Record),
	}
}

// Attach registers the engine's dispatch as the handler for
// wire.TopicRecord on a router that exposes OnTopic, the shape
// connection.Core provides.
func (e *Engine) Attach(router interface {
	OnTopic(topic wire.Topic, handler func(wire.Message))
}) {
	router.OnTopic(wire.TopicRecord, e.HandleMessage)
}

// GetRecord returns the existing Record named name, creating it (and
// sending CREATEORREAD) if this is the first reference.
func (e *Engine) GetRecord(name string) *Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.records[name]; ok {
		return r
	}

	r := newRecord(name, e.sender, e.timers, e.opts.log, e.opts.readAckTimeout, e.opts.readResponseTimeout, e.opts.deleteAckTimeout)
	e.records[name] = r
	e.sender.Send(wire.Message{Topic: wire.TopicRecord, Action: wire.ActionCreateOrRead, Name: name})
	return r
}

// HandleMessage routes one incoming RECORD message to its named Record.
// Messages for an unknown name (e.g. arriving after a local discard
// raced the server's ack) are dropped; there is nothing left locally to
// apply them to.
func (e *Engine) HandleMessage(m wire.Message) {
	e.mu.Lock()
	r, ok := e.records[m.Name]
	e.mu.Unlock()
	if !ok {
		return
	}

	switch m.Action {
	case wire.ActionRead:
		e.applyRead(r, m)
	case wire.ActionUpdate:
		e.applyUpdate(r, m)
	case wire.ActionPatch:
		e.applyPatch(r, m)
	case wire.ActionAck:
		e.applyAck(r, m)
	}
}

func (e *Engine) applyRead(r *Record, m wire.Message) {
	if len(m.Data) < 2 {
		r.log.Error("malformed READ", "name", m.Name, "data", m.Data)
		return
	}
	version, err := parseVersion(m.Data[0])
	if err != nil {
		r.log.Error("malformed READ version", "name", m.Name, "err", err)
		return
	}
	data, err := parseRecordPayload(m.Data[1])
	if err != nil {
		r.log.Error("malformed READ payload", "name", m.Name, "err", err)
		return
	}
	r.withLock(func() { r.applyReadLocked(version, data) })
}

func (e *Engine) applyUpdate(r *Record, m wire.Message) {
	if len(m.Data) < 2 {
		r.log.Error("malformed UPDATE", "name", m.Name, "data", m.Data)
		return
	}
	version, err := parseVersion(m.Data[0])
	if err != nil {
		r.log.Error("malformed UPDATE version", "name", m.Name, "err", err)
		return
	}
	data, err := parseRecordPayload(m.Data[1])
	if err != nil {
		r.log.Error("malformed UPDATE payload", "name", m.Name, "err", err)
		return
	}
	r.withLock(func() { r.applyUpdateLocked(version, data) })
}

func (e *Engine) applyPatch(r *Record, m wire.Message) {
	if len(m.Data) < 3 {
		r.log.Error("malformed PATCH", "name", m.Name, "data", m.Data)
		return
	}
	version, err := parseVersion(m.Data[0])
	if err != nil {
		r.log.Error("malformed PATCH version", "name", m.Name, "err", err)
		return
	}
	path := m.Data[1]
	value, err := wire.ParseTyped(m.Data[2])
	if err != nil {
		r.log.Error("malformed PATCH value", "name", m.Name, "err", err)
		return
	}
	r.withLock(func() { r.applyPatchLocked(version, path, value) })
}

// applyAck handles ACKs for CREATEORREAD, UNSUBSCRIBE and DELETE,
// distinguished by the original action carried in Data[0] — the same
// convention real deepstream.io servers use for ACK messages.
func (e *Engine) applyAck(r *Record, m wire.Message) {
	if len(m.Data) == 0 {
		return
	}
	switch wire.Action(m.Data[0]) {
	case wire.ActionCreateOrRead:
		r.withLock(func() { r.timers.Cancel(r.readAckHandle) })
	case wire.ActionDelete:
		r.withLock(func() {
			if r.destroyed {
				return
			}
			r.destroyLocked()
			r.emitDeletedLocked()
		})
		e.forget(r.name)
	case wire.ActionUnsubscribe:
		r.withLock(func() {
			if r.destroyed {
				return
			}
			r.destroyLocked()
			r.onReady, r.onError, r.onDeleted = nil, nil, nil
		})
		e.forget(r.name)
	}
}

func (e *Engine) forget(name string) {
	e.mu.Lock()
	delete(e.records, name)
	e.mu.Unlock()
}
