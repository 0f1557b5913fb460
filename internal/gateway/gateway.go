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

// Package gateway implements the control gateway contract of spec.md
// §4.7: authenticating an incoming endpoint, assigning it a control
// point, greeting it, and unwrapping every subsequent hop onto the
// star at Layer::Shell for that point.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/starerr"
	"github.com/starlane-io/starlane/internal/traversal"
)

// Authenticator verifies an incoming endpoint's credentials and
// answers the point it authenticates as.
type Authenticator interface {
	Authenticate(ctx context.Context, credentials []byte) (loc.Point, error)
}

// Injector is the star-side entry point a gateway hands every
// unwrapped payload to. internal/star's Star.Inject satisfies this.
type Injector interface {
	Inject(ctx context.Context, w wave.Wave, injector loc.Surface, reflect traversal.Reflector) error
}

// Greet is what a newly-accepted control receives back: the surface it
// was assigned, the agent it authenticated as, and wave templates it
// uses to stamp its own outbound waves (spec §4.7, second bullet).
type Greet struct {
	Surface   loc.Surface
	Agent     loc.Point
	Hop       *wave.DirectedWave
	Transport *wave.DirectedWave
}

// HyperwayInterchange is the control gateway of spec §4.7: one per
// star, accepting endpoints and routing their hops inward.
type HyperwayInterchange struct {
	star     loc.StarKey
	registry registry.Registry
	auth     Authenticator
	inject   Injector

	mu  sync.Mutex
	seq uint64
}

func NewHyperwayInterchange(star loc.StarKey, reg registry.Registry, auth Authenticator, inject Injector) *HyperwayInterchange {
	return &HyperwayInterchange{star: star, registry: reg, auth: auth, inject: inject}
}

// Accept authenticates credentials, registers a fresh control point
// `<star>/controls/control-%`, and returns the Greet the far side needs
// to address waves back into this star.
func (h *HyperwayInterchange) Accept(ctx context.Context, credentials []byte) (Greet, error) {
	agent, err := h.auth.Authenticate(ctx, credentials)
	if err != nil {
		return Greet{}, err
	}

	control, err := h.nextControlPoint()
	if err != nil {
		return Greet{}, err
	}

	if err := h.registry.Register(ctx, registry.Registration{Point: control, Kind: loc.ControlKind(), Owner: agent}); err != nil {
		return Greet{}, err
	}
	if err := h.registry.AssignStar(ctx, control, h.star); err != nil {
		return Greet{}, err
	}

	surface := loc.NewSurface(control, loc.LayerShell)
	starCore := loc.NewSurface(loc.StarPoint(h.star), loc.LayerCore)
	hopTemplate := wave.NewPing(surface, starCore, wave.NewDirectedCore(wave.HypMethod("Hop")))
	transportTemplate := wave.NewPing(surface, starCore, wave.NewDirectedCore(wave.HypMethod("Transport")))

	return Greet{Surface: surface, Agent: agent, Hop: hopTemplate, Transport: transportTemplate}, nil
}

func (h *HyperwayInterchange) nextControlPoint() (loc.Point, error) {
	h.mu.Lock()
	h.seq++
	n := h.seq
	h.mu.Unlock()

	return loc.NewPoint(loc.StarRoute(h.star), []loc.PointSeg{
		loc.RootSeg(),
		loc.BaseSeg("controls"),
		loc.BaseSeg(fmt.Sprintf("control-%d", n)),
	})
}

// HandleHop implements spec §4.7's third bullet: unwrap a Hyp<Hop> wave
// down to its payload and inject that payload into the star at
// Layer::Shell for the control's own point.
func (h *HyperwayInterchange) HandleHop(ctx context.Context, control loc.Point, hop *wave.DirectedWave, reflect traversal.Reflector) error {
	transport, ok := unwrapSubstance(hop, wave.SubstanceHop)
	if !ok {
		return starerr.BadRequest("control hop: not a Hyp<Hop> wave")
	}
	payload, ok := unwrapSubstance(transport, wave.SubstanceTransport)
	if !ok {
		return starerr.BadRequest("control hop: not a Hyp<Transport> wave")
	}
	return h.inject.Inject(ctx, payload, loc.NewSurface(control, loc.LayerShell), reflect)
}

func unwrapSubstance(w *wave.DirectedWave, kind wave.SubstanceKind) (*wave.DirectedWave, bool) {
	if w.Core.Body.Kind != kind || w.Core.Body.Wave == nil {
		return nil, false
	}
	return w.Core.Body.Wave, true
}
