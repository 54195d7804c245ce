// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deepstream-io/ds-client-go/wire"
)

// WebSocketAdapter is the production Adapter, backed by a gorilla
// websocket connection. It mirrors the read/write split of the
// teacher's websocketConn: Write is synchronized against concurrent
// callers, Read runs on its own goroutine and drives the callbacks.
type WebSocketAdapter struct {
	Dialer *websocket.Dialer
	Header http.Header

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once

	onOpen    func()
	onMessage func([]wire.Message)
	onError   func(error)
	onClose   func()
}

// NewWebSocketAdapter returns a fresh adapter. Construct one per session
// segment; never reuse an adapter across reconnects.
func NewWebSocketAdapter() *WebSocketAdapter {
	return &WebSocketAdapter{}
}

func (a *WebSocketAdapter) OnOpen(f func())              { a.onOpen = f }
func (a *WebSocketAdapter) OnMessage(f func([]wire.Message)) { a.onMessage = f }
func (a *WebSocketAdapter) OnError(f func(error))         { a.onError = f }
func (a *WebSocketAdapter) OnClose(f func())              { a.onClose = f }

// Open dials url and, on success, starts the read loop that feeds
// OnMessage/OnError/OnClose.
func (a *WebSocketAdapter) Open(ctx context.Context, url string) error {
	dialer := a.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, url, a.Header)
	if err != nil {
		if a.onError != nil {
			a.onError(err)
		}
		if a.onClose != nil {
			a.onClose()
		}
		return err
	}

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()

	if a.onOpen != nil {
		a.onOpen()
	}
	go a.readLoop()
	return nil
}

func (a *WebSocketAdapter) readLoop() {
	for {
		_, data, err := a.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && a.onError != nil {
				a.onError(err)
			}
			if a.onClose != nil {
				a.onClose()
			}
			return
		}
		if a.onMessage != nil {
			a.onMessage(wire.Decode(data))
		}
	}
}

// Send encodes and writes msgs as a single text frame.
func (a *WebSocketAdapter) Send(msgs ...wire.Message) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return errNotOpen
	}

	data := wire.Encode(msgs...)

	a.mu.Lock()
	defer a.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetWriteDeadline(time.Time{})
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close initiates a graceful close of the underlying connection.
func (a *WebSocketAdapter) Close() error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return nil
	}
	var err error
	a.closeOnce.Do(func() {
		deadline := time.Now().Add(2 * time.Second)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		err = conn.Close()
	})
	return err
}

type notOpenError struct{}

func (notOpenError) Error() string { return "transport: adapter not open" }

var errNotOpen = notOpenError{}
