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

package wave

import "github.com/starlane-io/starlane/api/loc"

// Wave is the common shape of DirectedWave and ReflectedWave: an
// identity, the sender's surface, and the accountable agent/scope.
// A wave is hashable by ID.
type Wave interface {
	WaveID() ID
	GetFrom() loc.Surface
	Handling() Handling
}

// DirectedWave (Ping) requests an operation at its To surface and, if
// Handling.Wait warrants it, expects a correlated ReflectedWave (Pong)
// back.
type DirectedWave struct {
	ID       ID
	Session  SessionID
	Agent    Agent
	Handles  Handling
	Scope    Scope
	From     loc.Surface
	To       loc.Surface
	Core     DirectedCore
	fromHyperway bool
}

func NewPing(from, to loc.Surface, core DirectedCore) *DirectedWave {
	return &DirectedWave{
		ID:      NewID(),
		Agent:   AnonymousAgent(),
		Handles: DefaultHandling,
		From:    from,
		To:      to,
		Core:    core,
	}
}

func (w *DirectedWave) WaveID() ID            { return w.ID }
func (w *DirectedWave) GetFrom() loc.Surface  { return w.From }
func (w *DirectedWave) Handling() Handling    { return w.Handles }

// FromHyperway reports whether this wave was lifted off an inter-star
// hyperway into the current star, per the traversal engine's
// direction/destination resolution algorithm (spec §4.3 step 3).
func (w *DirectedWave) FromHyperway() bool { return w.fromHyperway }

// MarkFromHyperway flags the wave as having arrived over a hyperway.
// Called by the transport layer immediately after unwrapping a Hop.
func (w *DirectedWave) MarkFromHyperway() { w.fromHyperway = true }

// Reflect builds the ReflectedWave answering this directed wave: its
// To is this wave's From (where the reply is routed), its Intended is
// this wave's To (the surface the ping originally targeted), and its
// ReflectionOf is this wave's ID.
func (w *DirectedWave) Reflect(core ReflectedCore, replyFrom loc.Surface) *ReflectedWave {
	return &ReflectedWave{
		ID:           NewID(),
		Session:      w.Session,
		Agent:        w.Agent,
		Handles:      w.Handles,
		Scope:        w.Scope,
		From:         replyFrom,
		To:           w.From,
		Intended:     w.To,
		Core:         core,
		ReflectionOf: w.ID,
	}
}

// ReflectedWave (Pong) answers exactly one directed wave, identified
// by ReflectionOf. At most one Pong is ever delivered per directed
// wave ID; a late real reply after a synthetic timeout Pong is
// dropped by the exchanger.
type ReflectedWave struct {
	ID           ID
	Session      SessionID
	Agent        Agent
	Handles      Handling
	Scope        Scope
	From         loc.Surface
	To           loc.Surface
	Intended     loc.Surface
	Core         ReflectedCore
	ReflectionOf ID
}

func (w *ReflectedWave) WaveID() ID           { return w.ID }
func (w *ReflectedWave) GetFrom() loc.Surface { return w.From }
func (w *ReflectedWave) Handling() Handling   { return w.Handles }

func (w *ReflectedWave) IsOk() bool { return w.Core.IsOk() }
