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

package star

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/starerr"
)

// HyperwaySender physically delivers a Hyp<Hop> wave to the adjacent
// it addresses. The gateway/transport layer supplies the concrete
// implementation; the star core only decides who gets called.
type HyperwaySender interface {
	SendHop(ctx context.Context, hop *wave.DirectedWave, to Adjacent) error
}

// Hyperway drives a star's to_hyperway/from_hyperway logic: routing
// decisions plus a per-adjacent circuit breaker around the physical
// send.
type Hyperway struct {
	skel   *Skel
	sender HyperwaySender

	mu      sync.Mutex
	breaker map[string]*gobreaker.CircuitBreaker[any]
}

func NewHyperway(skel *Skel, sender HyperwaySender) *Hyperway {
	return &Hyperway{skel: skel, sender: sender, breaker: map[string]*gobreaker.CircuitBreaker[any]{}}
}

func (h *Hyperway) breakerFor(key string) *gobreaker.CircuitBreaker[any] {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cb, ok := h.breaker[key]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        key,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	h.breaker[key] = cb
	return cb
}

// ToHyperway implements spec §4.5's to_hyperway(transport): decide who
// the transport wave is physically sent to next, and send it wrapped
// in a Hyp<Hop>, through that adjacent's circuit breaker.
func (h *Hyperway) ToHyperway(ctx context.Context, transport *wave.DirectedWave) error {
	adjacent, local, err := h.resolve(transport)
	if err != nil {
		return err
	}

	if local {
		// Still send through the local interchange so priority/retry
		// policy applies uniformly, rather than special-casing delivery
		// to ourselves.
		return h.sender.SendHop(ctx, wrapHop(transport, h.skel.GravitySurface(), h.skel.GravitySurface()), Adjacent{Key: h.skel.Key, Surface: h.skel.GravitySurface()})
	}

	hop := wrapHop(transport, h.skel.GravitySurface(), adjacent.Surface)
	cb := h.breakerFor(adjacent.Key.String())
	_, err = cb.Execute(func() (any, error) {
		return nil, h.sender.SendHop(ctx, hop, adjacent)
	})
	return err
}

// resolve picks the adjacent a transport wave should be sent to next,
// per spec §4.5's branch order. transport.To addresses the star this
// hop is bound for, not the particle the wrapped payload ultimately
// targets. local=true means the destination is this very star.
func (h *Hyperway) resolve(transport *wave.DirectedWave) (adjacent Adjacent, local bool, err error) {
	if transport.Core.Body.Kind != wave.SubstanceTransport {
		return Adjacent{}, false, starerr.BadRequest("to_hyperway: not a Hyp<Transport> wave")
	}

	if transport.To.Point.Equal(h.skel.Point) {
		return Adjacent{}, true, nil
	}

	for _, a := range h.skel.Adjacents {
		if a.Surface.Point.Equal(transport.To.Point) {
			return a, false, nil
		}
	}

	var forwarders []Adjacent
	for _, a := range h.skel.Adjacents {
		if a.IsForwarder() {
			forwarders = append(forwarders, a)
		}
	}
	switch len(forwarders) {
	case 0:
		return Adjacent{}, false, starerr.Fatal("to_hyperway: need forwarder")
	case 1:
		return forwarders[0], false, nil
	default:
		return Adjacent{}, false, starerr.ErrNotImplemented
	}
}

// FromHyperway implements spec §4.5's from_hyperway(hop): unwrap,
// bump the hop count, and either inject locally or forward onward.
// inject is called with the payload wave when this star is the
// transport's destination.
func (h *Hyperway) FromHyperway(ctx context.Context, hop *wave.DirectedWave, inject func(ctx context.Context, w *wave.DirectedWave) error) error {
	transport, ok := unwrapHop(hop)
	if !ok {
		return starerr.BadRequest("from_hyperway: not a Hyp<Hop> wave")
	}

	transport = incrementHops(transport)
	if hopsOf(transport) > maxHops {
		return starerr.Fatal(fmt.Sprintf("from_hyperway: hop count exceeded %d", maxHops))
	}

	if transport.To.Point.Equal(h.skel.Point) {
		payload, ok := unwrapTransport(transport)
		if !ok {
			return starerr.BadRequest("from_hyperway: not a Hyp<Transport> wave")
		}
		return inject(ctx, payload)
	}

	if !h.skel.Kind.IsForwarder() {
		return starerr.Fatal("from_hyperway: this star is not a forwarder")
	}
	return h.ToHyperway(ctx, transport)
}
