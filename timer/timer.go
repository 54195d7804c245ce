// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timer provides named, cancelable deadlines and periodic ticks
// for the connection core and record engine, built on the runtime's
// time.AfterFunc and time.Ticker.
package timer

import (
	"sync"
	"time"
)

// Handle identifies a scheduled timer so it can be canceled.
type Handle uint64

// Service schedules single-shot deadlines and periodic ticks. All
// methods are safe for concurrent use, but the connection core and
// record engine only ever call it from their own single logical
// execution context; the locking here guards against the
// time.AfterFunc callback goroutine racing with that context.
type Service struct {
	mu      sync.Mutex
	next    Handle
	timers  map[Handle]*time.Timer
	tickers map[Handle]*time.Ticker
	stopped map[Handle]chan struct{}
}

// New creates an empty Service.
func New() *Service {
	return &Service{
		timers:  make(map[Handle]*time.Timer),
		tickers: make(map[Handle]*time.Ticker),
		stopped: make(map[Handle]chan struct{}),
	}
}

// Schedule arms a single-shot timer that invokes cb after delay. cb is
// guaranteed to fire at most once; canceling after it has already fired
// is a no-op.
func (s *Service) Schedule(delay time.Duration, cb func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.nextHandle()
	t := time.AfterFunc(delay, func() {
		s.mu.Lock()
		_, live := s.timers[h]
		delete(s.timers, h)
		s.mu.Unlock()
		if live {
			cb()
		}
	})
	// s.mu is still held here: even a zero-delay AfterFunc can't run its
	// callback until this lock is released, so s.timers[h] is always
	// populated before the callback's own lock acquisition can proceed.
	s.timers[h] = t
	return h
}

// SetInterval arms a periodic timer that invokes cb every period until
// canceled.
func (s *Service) SetInterval(period time.Duration, cb func()) Handle {
	s.mu.Lock()
	h := s.nextHandle()
	ticker := time.NewTicker(period)
	stop := make(chan struct{})
	s.tickers[h] = ticker
	s.stopped[h] = stop
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				// stop may already be closed even though this tick was also
				// ready: select picks between ready cases at random, so a
				// tick buffered just before Cancel() could otherwise still
				// invoke cb() once after cancellation. Re-check non-blocking
				// before running it.
				select {
				case <-stop:
					return
				default:
				}
				cb()
			case <-stop:
				return
			}
		}
	}()
	return h
}

// Cancel stops the timer or ticker identified by h. Cancel is idempotent:
// canceling an unknown or already-fired/canceled handle is a no-op.
func (s *Service) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
		return
	}
	if t, ok := s.tickers[h]; ok {
		t.Stop()
		delete(s.tickers, h)
		if stop, ok := s.stopped[h]; ok {
			close(stop)
			delete(s.stopped, h)
		}
	}
}

// CancelAll stops every timer and ticker currently armed. The connection
// core calls this on any socket close, before transitioning.
func (s *Service) CancelAll() {
	s.mu.Lock()
	handles := make([]Handle, 0, len(s.timers)+len(s.tickers))
	for h := range s.timers {
		handles = append(handles, h)
	}
	for h := range s.tickers {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		s.Cancel(h)
	}
}

func (s *Service) nextHandle() Handle {
	s.next++
	return s.next
}
