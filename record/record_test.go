// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package record

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	json "github.com/segmentio/encoding/json"

	"github.com/deepstream-io/ds-client-go/wire"
)

// fakeSender records every message handed to Send, standing in for
// connection.Core the same way transport.Fake stands in for a socket.
type fakeSender struct {
	mu   sync.Mutex
	sent []wire.Message
}

func (f *fakeSender) Send(msgs ...wire.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msgs...)
}

func (f *fakeSender) Sent() []wire.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wire.Message(nil), f.sent...)
}

func newTestEngine() (*Engine, *fakeSender) {
	s := &fakeSender{}
	e := New(s, Options{
		ReadAckTimeout:      50 * time.Millisecond,
		ReadResponseTimeout: 100 * time.Millisecond,
		DeleteAckTimeout:    50 * time.Millisecond,
		Logger:              slog.Default(),
	})
	return e, s
}

func waitForRecord(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func readyRecord(t *testing.T, e *Engine, name string, version int, data any) *Record {
	t.Helper()
	r := e.GetRecord(name)
	encoded, _ := json.Marshal(data)
	e.HandleMessage(wire.Message{
		Topic:  wire.TopicRecord,
		Action: wire.ActionRead,
		Name:   name,
		Data:   []string{itoa(version), string(encoded)},
	})
	waitForRecord(t, r.IsReady)
	return r
}

func TestGetRecordSendsCreateOrRead(t *testing.T) {
	e, s := newTestEngine()
	r := e.GetRecord("item/1")
	if r.Name() != "item/1" {
		t.Fatalf("want name item/1, got %q", r.Name())
	}
	sent := s.Sent()
	if len(sent) != 1 || sent[0].Action != wire.ActionCreateOrRead || sent[0].Name != "item/1" {
		t.Fatalf("want CREATEORREAD(item/1), got %+v", sent)
	}

	// Second call returns the same instance without sending again.
	r2 := e.GetRecord("item/1")
	if r2 != r {
		t.Error("want GetRecord to return the existing Record")
	}
	if len(s.Sent()) != 1 {
		t.Error("want no second CREATEORREAD")
	}
}

func TestReadMakesRecordReady(t *testing.T) {
	e, _ := newTestEngine()
	var readyCount int
	r := e.GetRecord("item/1")
	r.OnReady(func() { readyCount++ })

	r = readyRecord(t, e, "item/1", 5, map[string]any{"a": float64(1)})

	if r.Version() != 5 {
		t.Errorf("want version 5, got %d", r.Version())
	}
	got, ok := r.Get("")
	if !ok {
		t.Fatal("want Get(\"\") to succeed once ready")
	}
	want := map[string]any{"a": float64(1)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get mismatch (-want +got):\n%s", diff)
	}
	waitForRecord(t, func() bool { return readyCount == 1 })
}

func TestSetPathSendsPatchAndBumpsVersion(t *testing.T) {
	e, s := newTestEngine()
	r := readyRecord(t, e, "item/1", 5, map[string]any{"a": float64(1)})

	if err := r.SetPath("a", float64(2)); err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	if r.Version() != 6 {
		t.Errorf("want version 6, got %d", r.Version())
	}

	sent := s.Sent()
	last := sent[len(sent)-1]
	if last.Action != wire.ActionPatch || last.Name != "item/1" {
		t.Fatalf("want PATCH(item/1), got %+v", last)
	}
	if last.Data[0] != "6" || last.Data[1] != "a" {
		t.Fatalf("want version=6 path=a, got %+v", last.Data)
	}
}

func TestSetNoOpOnDeepEqualValue(t *testing.T) {
	e, s := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{"a": float64(1)})
	before := len(s.Sent())

	var notified bool
	r.Subscribe("", false, func(any) { notified = true })

	if err := r.Set(map[string]any{"a": float64(1)}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if r.Version() != 1 {
		t.Errorf("want version to stay at 1, got %d", r.Version())
	}
	if len(s.Sent()) != before {
		t.Errorf("want no outbound message for a no-op set, got %d new", len(s.Sent())-before)
	}
	time.Sleep(10 * time.Millisecond)
	if notified {
		t.Error("want no subscriber notification for a no-op set")
	}
}

func TestSetBeforeReadyFails(t *testing.T) {
	e, _ := newTestEngine()
	r := e.GetRecord("item/1")
	var errs []error
	r.OnError(func(err error) { errs = append(errs, err) })

	if err := r.Set(map[string]any{"a": float64(1)}); err != ErrNotReady {
		t.Fatalf("want ErrNotReady, got %v", err)
	}
	waitForRecord(t, func() bool { return len(errs) == 1 })
}

func TestSequentialSetsProduceOrderedUpdates(t *testing.T) {
	e, s := newTestEngine()
	r := readyRecord(t, e, "counter", 1, map[string]any{"n": float64(0)})

	for i := 1; i <= 3; i++ {
		if err := r.SetPath("n", float64(i)); err != nil {
			t.Fatalf("SetPath %d: %v", i, err)
		}
	}
	if r.Version() != 4 {
		t.Errorf("want version 4 (1 + 3 sets), got %d", r.Version())
	}

	sent := s.Sent()
	var patches []wire.Message
	for _, m := range sent {
		if m.Action == wire.ActionPatch {
			patches = append(patches, m)
		}
	}
	if len(patches) != 3 {
		t.Fatalf("want 3 PATCH messages, got %d", len(patches))
	}
	for i, m := range patches {
		wantVersion := itoa(2 + i)
		if m.Data[0] != wantVersion {
			t.Errorf("patch %d: want version %s, got %s", i, wantVersion, m.Data[0])
		}
	}
}

func TestSubscribePathOnlyFiresOnThatPathChanging(t *testing.T) {
	e, _ := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{"a": float64(1), "b": float64(1)})

	var aCalls, wildcardCalls int
	r.Subscribe("a", false, func(any) { aCalls++ })
	r.Subscribe("", false, func(any) { wildcardCalls++ })

	if err := r.SetPath("b", float64(2)); err != nil {
		t.Fatalf("SetPath: %v", err)
	}
	waitForRecord(t, func() bool { return wildcardCalls == 1 })
	time.Sleep(10 * time.Millisecond)
	if aCalls != 0 {
		t.Errorf("want 0 notifications for disjoint path a, got %d", aCalls)
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	e, _ := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{"a": map[string]any{"b": float64(1)}})

	got, _ := r.Get("")
	m := got.(map[string]any)
	m["a"].(map[string]any)["b"] = float64(999)

	again, _ := r.Get("")
	if diff := cmp.Diff(map[string]any{"a": map[string]any{"b": float64(1)}}, again); diff != "" {
		t.Errorf("external mutation leaked into record state (-want +got):\n%s", diff)
	}
}

func TestVersionMismatchStillConverges(t *testing.T) {
	e, _ := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{"a": float64(1)})

	var errs []error
	r.OnError(func(err error) { errs = append(errs, err) })

	encoded, _ := json.Marshal(map[string]any{"a": float64(99)})
	e.HandleMessage(wire.Message{
		Topic:  wire.TopicRecord,
		Action: wire.ActionUpdate,
		Name:   "item/1",
		Data:   []string{"20", string(encoded)},
	})

	waitForRecord(t, func() bool { return r.Version() == 20 })
	got, _ := r.Get("")
	if diff := cmp.Diff(map[string]any{"a": float64(99)}, got); diff != "" {
		t.Errorf("want converged data despite mismatch (-want +got):\n%s", diff)
	}
	waitForRecord(t, func() bool { return len(errs) == 1 })
}

func TestDeleteSendsDeleteAndEmitsDeletedOnAck(t *testing.T) {
	e, s := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{})

	var deleted bool
	r.OnDeleted(func() { deleted = true })
	r.Delete()

	waitForRecord(t, func() bool {
		for _, m := range s.Sent() {
			if m.Action == wire.ActionDelete {
				return true
			}
		}
		return false
	})

	e.HandleMessage(wire.Message{
		Topic:  wire.TopicRecord,
		Action: wire.ActionAck,
		Name:   "item/1",
		Data:   []string{string(wire.ActionDelete)},
	})

	waitForRecord(t, func() bool { return deleted })
	if err := r.Set(map[string]any{"x": float64(1)}); err != ErrAlreadyDestroyed {
		t.Errorf("want ErrAlreadyDestroyed after delete, got %v", err)
	}
}

func TestDiscardSendsUnsubscribeAndAwaitsAck(t *testing.T) {
	e, s := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{})
	r.Discard()

	waitForRecord(t, func() bool {
		for _, m := range s.Sent() {
			if m.Action == wire.ActionUnsubscribe {
				return true
			}
		}
		return false
	})

	e.HandleMessage(wire.Message{
		Topic:  wire.TopicRecord,
		Action: wire.ActionAck,
		Name:   "item/1",
		Data:   []string{string(wire.ActionUnsubscribe)},
	})

	waitForRecord(t, func() bool {
		e.mu.Lock()
		_, ok := e.records["item/1"]
		e.mu.Unlock()
		return !ok
	})
}

func TestDiscardEmitsTimeoutErrorWhenAckNeverArrives(t *testing.T) {
	e, _ := newTestEngine()
	r := readyRecord(t, e, "item/1", 1, map[string]any{})

	var mu sync.Mutex
	var errs []error
	r.OnError(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	r.Discard()

	waitForRecord(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, err := range errs {
			if err == ErrDiscardTimeout {
				return true
			}
		}
		return false
	})
}
