// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package events implements the lifecycle event bus: publish/subscribe
// keyed by event name, delivered synchronously on the publisher's own
// goroutine. It is the mechanism by which the connection core surfaces
// CONNECTION_STATE_CHANGED and the transport/auth error kinds to user
// code.
package events

import (
	"log/slog"
	"sync"
)

// Handler receives a published event's payload. payload is nil for
// events published without data.
type Handler func(payload any)

// Bus is a synchronous, panic-isolating publish/subscribe dispatcher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *slog.Logger
}

// New creates an empty Bus. A nil logger defaults to slog.Default().
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{handlers: make(map[string][]Handler), log: log}
}

// On registers h to be invoked whenever event is published.
func (b *Bus) On(event string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], h)
}

// Off removes all handlers registered for event. The fine-grained
// per-handler removal the JS source supports (via function identity)
// has no clean Go analogue; callers that need selective removal should
// wrap their handler in a struct with its own enabled flag.
func (b *Bus) Off(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, event)
}

// Emit delivers payload synchronously to every handler registered for
// event, in registration order. A handler that panics is recovered and
// logged so it cannot prevent delivery to the handlers after it.
func (b *Bus) Emit(event string, payload any) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.safeInvoke(event, h, payload)
	}
}

func (b *Bus) safeInvoke(event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", "event", event, "recover", r)
		}
	}()
	h(payload)
}
