/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package exchanger correlates directed waves with their reflected
// replies: Exchanger.PingPong registers a pending reply keyed by the
// directed wave's ID, and Exchanger.Reflected fulfils it when the
// matching Pong arrives. A registration that goes unanswered past its
// Handling.Wait timeout is fulfilled synthetically with a 408.
package exchanger

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/starlane-io/starlane/api/wave"
)

// Timeouts is the global Low/Med/High → duration table consulted by
// PingPong. The zero value is invalid; use DefaultTimeouts.
type Timeouts struct {
	Low, Med, High time.Duration
}

// DefaultTimeouts mirrors api/wave's WaitLevel.Timeout defaults; a
// star config may construct a different table and pass it via
// WithTimeouts.
var DefaultTimeouts = Timeouts{
	Low:  wave.WaitLow.Timeout(),
	Med:  wave.WaitMed.Timeout(),
	High: wave.WaitHigh.Timeout(),
}

func (t Timeouts) of(w wave.WaitLevel) time.Duration {
	switch w {
	case wave.WaitLow:
		return t.Low
	case wave.WaitHigh:
		return t.High
	default:
		return t.Med
	}
}

// pending is one in-flight directed-wave registration.
type pending struct {
	ch    chan *wave.ReflectedWave
	once  sync.Once
	timer clock.Timer
}

// Exchanger owns the process-wide map of in-flight directed waves
// awaiting a reflected reply. It is safe for concurrent use.
type Exchanger struct {
	clock    clock.Clock
	log      logr.Logger
	timeouts Timeouts

	mu          sync.Mutex
	pendingByID map[wave.ID]*pending
}

// New constructs an Exchanger using the given clock (pass
// clock.RealClock{} in production, a fake clock in tests) and logger,
// using DefaultTimeouts.
func New(c clock.Clock, log logr.Logger) *Exchanger {
	if c == nil {
		c = clock.RealClock{}
	}
	return &Exchanger{
		clock:       c,
		log:         log,
		timeouts:    DefaultTimeouts,
		pendingByID: make(map[wave.ID]*pending),
	}
}

// WithTimeouts overrides the default Low/Med/High timeout table.
func (e *Exchanger) WithTimeouts(t Timeouts) *Exchanger {
	e.timeouts = t
	return e
}

// PingPong registers ping.ID as pending and returns a channel that
// receives exactly one ReflectedWave: the correlated Pong, or a
// synthetic 408 Pong if ping.Handling().Wait's timeout expires first.
// The caller must eventually drain the channel; cancelling interest by
// simply not reading is safe, but Cancel should be called to release
// the map entry promptly.
func (e *Exchanger) PingPong(p *wave.DirectedWave) <-chan *wave.ReflectedWave {
	ch := make(chan *wave.ReflectedWave, 1)
	entry := &pending{ch: ch}

	e.mu.Lock()
	e.pendingByID[p.ID] = entry
	e.mu.Unlock()

	timeout := e.timeouts.of(p.Handling().Wait)
	entry.timer = e.clock.AfterFunc(timeout, func() {
		e.fulfil(p.ID, syntheticTimeout(p))
	})

	return ch
}

// Reflected looks up pong.ReflectionOf and fulfils the matching
// channel. Unknown IDs are dropped with a warning log; this is not an
// error to the caller since a Pong may legitimately race a Cancel.
func (e *Exchanger) Reflected(pong *wave.ReflectedWave) {
	if !e.fulfil(pong.ReflectionOf, pong) {
		e.log.V(1).Info("reflected wave for unknown or already-fulfilled id", "reflectionOf", pong.ReflectionOf.String())
	}
}

// Cancel removes a pending registration without delivering anything,
// e.g. when the caller's context is cancelled before a reply arrives.
func (e *Exchanger) Cancel(id wave.ID) {
	e.mu.Lock()
	entry, ok := e.pendingByID[id]
	if ok {
		delete(e.pendingByID, id)
	}
	e.mu.Unlock()
	if ok && entry.timer != nil {
		entry.timer.Stop()
	}
}

// fulfil delivers msg to the pending entry for id, if one still
// exists, and removes the entry. Returns false if no entry was
// found — either the id was never registered or it was already
// fulfilled (first observed wins, per spec's at-most-one-pong
// invariant).
func (e *Exchanger) fulfil(id wave.ID, msg *wave.ReflectedWave) bool {
	e.mu.Lock()
	entry, ok := e.pendingByID[id]
	if ok {
		delete(e.pendingByID, id)
	}
	e.mu.Unlock()
	if !ok {
		return false
	}

	entry.once.Do(func() {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		entry.ch <- msg
		close(entry.ch)
	})
	return true
}

// Pending reports the number of in-flight registrations; used by
// status reporting and tests.
func (e *Exchanger) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pendingByID)
}

func syntheticTimeout(p *wave.DirectedWave) *wave.ReflectedWave {
	return p.Reflect(wave.TimeoutCore(), p.To)
}
