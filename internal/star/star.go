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

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/traversal"
)

const starCallQueueDepth = 1024

// injection is one layer-traversal entry onto the star, queued on
// inject_tx: a wave, the surface that injected it, and whether it just
// arrived off a hyperway.
type injection struct {
	wave         wave.Wave
	injector     loc.Surface
	fromHyperway bool
	reflect      traversal.Reflector
}

// Star is a star's single-threaded event loop over the StarCall
// variants of spec §4.5: waves leaving particles toward the fabric
// (gravity_tx), layer-traversal injections (inject_tx), in-flight
// traversal continuations (traverse_to_next_tx), terminal traversals
// bound for a driver (drivers_traversal_tx), and inbound hyperway
// waves (from_hyperway).
type Star struct {
	skel     *Skel
	hyperway *Hyperway
	rippler  Rippler
	machine  Machine

	gravityTx          chan gravityCall
	injectTx           chan injection
	traverseToNextTx   chan *traversal.Traversal
	driversTraversalTx chan *traversal.Traversal
	fromHyperwayTx     chan *wave.DirectedWave

	stopCh chan struct{}
}

type gravityCall struct {
	wave *wave.DirectedWave
}

func NewStar(skel *Skel, sender HyperwaySender, rippler Rippler, machine Machine) *Star {
	s := &Star{
		skel:               skel,
		hyperway:           NewHyperway(skel, sender),
		rippler:            rippler,
		machine:            machine,
		gravityTx:          make(chan gravityCall, starCallQueueDepth),
		injectTx:           make(chan injection, starCallQueueDepth),
		traverseToNextTx:   make(chan *traversal.Traversal, starCallQueueDepth),
		driversTraversalTx: make(chan *traversal.Traversal, starCallQueueDepth),
		fromHyperwayTx:     make(chan *wave.DirectedWave, starCallQueueDepth),
		stopCh:             make(chan struct{}),
	}
	skel.Engine.Exiter = s
	skel.SetReflector(func(ctx context.Context, r *wave.ReflectedWave) error {
		return s.Gravity(ctx, r)
	})
	return s
}

// Run is the star's event loop: one StarCall handled at a time, in no
// particular priority order among the channels.
func (s *Star) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case call := <-s.gravityTx:
			if err := s.ToGravity(ctx, call.wave, s.machine); err != nil {
				s.skel.Log.Error(err, "to_gravity failed")
			}
		case in := <-s.injectTx:
			if err := s.skel.Engine.StartTraversal(ctx, in.wave, in.injector, in.fromHyperway, in.reflect); err != nil {
				s.skel.Log.Error(err, "start traversal failed")
			}
		case trav := <-s.traverseToNextTx:
			if err := s.skel.Engine.Resume(ctx, trav, trav.Reflect); err != nil {
				s.skel.Log.Error(err, "traversal resume failed")
			}
		case trav := <-s.driversTraversalTx:
			if err := s.dispatchToDriver(ctx, trav); err != nil {
				s.skel.Log.Error(err, "driver dispatch failed")
			}
		case hop := <-s.fromHyperwayTx:
			if err := s.hyperway.FromHyperway(ctx, hop, s.injectFromHyperway); err != nil {
				s.skel.Log.Error(err, "from_hyperway failed")
			}
		}
	}
}

func (s *Star) Stop() { close(s.stopCh) }

// Adjacents reports the star keys of every direct hyperway neighbor,
// for read-only reporting (internal/statusapi).
func (s *Star) Adjacents() []loc.StarKey {
	keys := make([]loc.StarKey, 0, len(s.skel.Adjacents))
	for _, a := range s.skel.Adjacents {
		keys = append(keys, a.Key)
	}
	return keys
}

// Inject enqueues a locally-originated wave for layer traversal,
// e.g. a particle's own outbound Ping re-entering at a higher layer.
func (s *Star) Inject(ctx context.Context, w wave.Wave, injector loc.Surface, reflect traversal.Reflector) error {
	select {
	case s.injectTx <- injection{wave: w, injector: injector, reflect: reflect}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// injectFromHyperway is the inject callback to_hyperway.FromHyperway
// uses once it has determined this star is the transport's
// destination: start a fresh traversal at the gravity injector, with
// fromHyperway set, per spec §4.5.
func (s *Star) injectFromHyperway(ctx context.Context, w *wave.DirectedWave) error {
	w.MarkFromHyperway()
	return s.skel.Engine.StartTraversal(ctx, w, s.skel.GravitySurface(), true, s.reflectToHyperway)
}

// reflectToHyperway is the Reflector used for waves injected off a
// hyperway: their reply must itself travel back out to gravity, since
// the exchanger correlating them lives on the originating star.
func (s *Star) reflectToHyperway(ctx context.Context, r *wave.ReflectedWave) error {
	return s.Gravity(ctx, r)
}

// FromHyperway enqueues a Hyp<Hop> wave that just arrived over the
// physical transport.
func (s *Star) FromHyperway(ctx context.Context, hop *wave.DirectedWave) error {
	select {
	case s.fromHyperwayTx <- hop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Gravity enqueues a wave leaving a particle toward the fabric. Only
// directed waves travel through to_gravity's star-sharding logic;
// reflected waves bypass the gravity queue and are located, wrapped
// and sent immediately by gravityReflected in the caller's goroutine.
func (s *Star) Gravity(ctx context.Context, w wave.Wave) error {
	switch v := w.(type) {
	case *wave.DirectedWave:
		select {
		case s.gravityTx <- gravityCall{wave: v}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	case *wave.ReflectedWave:
		return s.gravityReflected(ctx, v)
	default:
		return nil
	}
}

// ExitFabric implements traversal.Exiter: a wave ran off the end of
// its plan heading toward the fabric, so it leaves this star entirely.
func (s *Star) ExitFabric(ctx context.Context, trav *traversal.Traversal) error {
	return s.Gravity(ctx, trav.Payload)
}

// ExitCore implements traversal.Exiter: a wave ran off the end of its
// plan heading toward the core, so it is handed to the drivers
// manager for terminal dispatch.
func (s *Star) ExitCore(ctx context.Context, trav *traversal.Traversal) error {
	select {
	case s.driversTraversalTx <- trav:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatchToDriver resolves the driver owning trav.Record.Kind and
// hands the wave to its ParticleSphere, serialized through the
// driver's own DriverRunner: a Handler answers in place, ending the
// traversal; a Router is given the raw wave to forward onward itself,
// and the traversal then steps to its next layer and resumes, so a
// Mechtron's Portal/Host/Guest/Core layers are each dispatched to the
// driver in turn rather than ending at the first one.
func (s *Star) dispatchToDriver(ctx context.Context, trav *traversal.Traversal) error {
	runner, ok := s.skel.Drivers.Find(trav.Record.Kind)
	if !ok {
		return s.failTerminal(ctx, trav, wave.ServerErrorCore())
	}

	cont, err := runner.Traverse(ctx, trav)
	if err != nil {
		return s.failTerminal(ctx, trav, wave.ServerErrorCore())
	}
	if !cont {
		return nil
	}

	if _, ok := trav.Next(); !ok {
		return nil // Router sphere at the plan's last layer; nothing further to dispatch.
	}
	select {
	case s.traverseToNextTx <- trav:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Star) failTerminal(ctx context.Context, trav *traversal.Traversal, core wave.ReflectedCore) error {
	directed, isDirected := trav.Payload.(*wave.DirectedWave)
	if !isDirected || trav.Reflect == nil {
		return nil
	}
	return trav.Reflect(ctx, directed.Reflect(core, trav.To))
}

// gravityReflected delivers a reflected wave leaving toward the
// fabric: located by its To point exactly as a directed wave would be,
// then wrapped and sent onward.
func (s *Star) gravityReflected(ctx context.Context, r *wave.ReflectedWave) error {
	record, err := s.skel.Registry.Locate(ctx, r.To.Point)
	if err != nil {
		return err
	}
	starSurface := loc.NewSurface(loc.StarPoint(record.Star), loc.LayerCore)
	ping := wave.NewPing(r.From, starSurface, wave.NewDirectedCore(wave.HypMethod("Reflected")))
	ping.Core = ping.Core.WithBody(wave.UltraPongSubstance(r))
	transport := wrapTransport(ping, starSurface)
	return s.hyperway.ToHyperway(ctx, transport)
}
