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

// Package traversal implements the layer traversal engine: each star
// owns one, and it advances a wave through a particle's layer stack
// (the plan named by the particle's Kind), dispatching to star-managed
// layers (Field, Shell) along the way and exiting in the direction of
// travel once the plan is exhausted.
package traversal

import (
	"github.com/go-logr/logr"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Traversal is a wave in flight through one particle's stack. The
// spec's Traversal<W> is generic over the directed/reflected wave
// payload; here Payload is the wave.Wave interface since the
// layer-stepping algorithm itself never depends on which variant it
// carries — only the terminal visit (driver dispatch, exchanger
// correlation) does, and that happens outside Next.
type Traversal struct {
	Payload       wave.Wave
	Record        loc.Record
	Layer         loc.Layer
	InjectorLayer loc.Layer
	Dir           loc.Direction
	Dest          *loc.Layer
	To            loc.Surface
	Logger        logr.Logger

	// Reflect delivers a reply for this traversal's Payload, however
	// the caller who started it wants that delivered (the exchanger,
	// a TxRouter, a HyperwayRouter). An Exiter reached on the Core-ward
	// side uses it to answer a directed wave once a driver has produced
	// its ReflectedCore.
	Reflect Reflector

	// done is set once a visit has absorbed or reflected the wave,
	// ending the run loop without a further Next/exit step.
	done bool
}

// Next advances Layer to the next layer present in the particle's
// plan, in Dir, returning false once the plan is exhausted in that
// direction.
func (t *Traversal) Next() (loc.Layer, bool) {
	plan := t.Record.Kind.TraversalPlan()
	next, ok := plan.Next(t.Layer, t.Dir)
	if ok {
		t.Layer = next
	}
	return next, ok
}

// AtDestination reports whether Dest is set and Layer has reached it.
func (t *Traversal) AtDestination() bool {
	return t.Dest != nil && *t.Dest == t.Layer
}

// NewDirection computes the direction of travel for an intra-particle,
// inter-layer hop: Fabric if dest sits closer to Gravity than the
// injector, Core if farther, and Fabric as the no-op default when they
// coincide (spec §4.3 step 3, second bullet).
func NewDirection(injector, dest loc.Layer) loc.Direction {
	switch {
	case dest < injector:
		return loc.DirectionFabric
	case dest > injector:
		return loc.DirectionCore
	default:
		return loc.DirectionFabric
	}
}
