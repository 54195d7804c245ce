// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"

	"github.com/deepstream-io/ds-client-go/wire"
)

// Fake is an in-memory Adapter for connection-core and record-engine
// tests: it records everything Send writes and lets the test drive
// OnOpen/OnMessage/OnError/OnClose directly, without a real socket.
type Fake struct {
	OpenErr error
	URL     string

	mu   sync.Mutex
	sent []wire.Message

	onOpen    func()
	onMessage func([]wire.Message)
	onError   func(error)
	onClose   func()
}

// NewFake returns an empty Fake adapter.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) OnOpen(fn func())                  { f.onOpen = fn }
func (f *Fake) OnMessage(fn func([]wire.Message))  { f.onMessage = fn }
func (f *Fake) OnError(fn func(error))             { f.onError = fn }
func (f *Fake) OnClose(fn func())                  { f.onClose = fn }

func (f *Fake) Open(ctx context.Context, url string) error {
	f.URL = url
	if f.OpenErr != nil {
		if f.onError != nil {
			f.onError(f.OpenErr)
		}
		if f.onClose != nil {
			f.onClose()
		}
		return f.OpenErr
	}
	if f.onOpen != nil {
		f.onOpen()
	}
	return nil
}

func (f *Fake) Send(msgs ...wire.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msgs...)
	return nil
}

func (f *Fake) Close() error {
	if f.onClose != nil {
		f.onClose()
	}
	return nil
}

// Sent returns a copy of every message handed to Send so far, in order.
func (f *Fake) Sent() []wire.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wire.Message(nil), f.sent...)
}

// Deliver simulates the server sending msgs to this adapter.
func (f *Fake) Deliver(msgs ...wire.Message) {
	if f.onMessage != nil {
		f.onMessage(msgs)
	}
}

// SimulateError simulates a transport-level error followed by close,
// the same sequence a real socket failure produces.
func (f *Fake) SimulateError(err error) {
	if f.onError != nil {
		f.onError(err)
	}
	if f.onClose != nil {
		f.onClose()
	}
}

// SimulateClose simulates an unsolicited close with no preceding error.
func (f *Fake) SimulateClose() {
	if f.onClose != nil {
		f.onClose()
	}
}
