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

package traversal

import (
	"context"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/trace"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Registry is the narrow slice of the registry contract the engine
// needs: resolving a point to its hosting record. internal/registry
// supplies the concrete implementation.
type Registry interface {
	Locate(ctx context.Context, point loc.Point) (loc.Record, error)
}

// Exiter is called when a traversal runs off the end of its plan in a
// given direction: Fabric-bound traversals exit onto the star's
// gravity-bound channel, Core-bound exits are handed to the drivers
// manager for terminal dispatch.
type Exiter interface {
	ExitFabric(ctx context.Context, trav *Traversal) error
	ExitCore(ctx context.Context, trav *Traversal) error
}

// Engine is the star's LayerTraversalEngine: one per star, routing
// waves through particle layer stacks.
type Engine struct {
	Registry Registry
	Exiter   Exiter
	Topics   *TopicRegistry
	Visitors map[loc.Layer]LayerVisitor
	Tracer   trace.Tracer
	Log      logr.Logger

	// GravitySurface is this star's own gravity surface, used as the
	// `from` of synthetic 404 replies when a directed wave's recipient
	// cannot be located.
	GravitySurface loc.Surface
}

func New(registry Registry, exiter Exiter, gravity loc.Surface) *Engine {
	return &Engine{
		Registry:       registry,
		Exiter:         exiter,
		Topics:         NewTopicRegistry(),
		Visitors:       map[loc.Layer]LayerVisitor{loc.LayerField: PassThroughVisitor, loc.LayerShell: PassThroughVisitor},
		Tracer:         trace.NewNoopTracerProvider().Tracer("traversal"),
		GravitySurface: gravity,
	}
}

// reflector abstracts "deliver this reflected wave", implemented
// variously by the exchanger (local originator), a TxRouter, or a
// HyperwayRouter, depending on who is meant to receive it. The engine
// itself never knows which.
type Reflector func(ctx context.Context, r *wave.ReflectedWave) error

// StartTraversal runs the start-traversal algorithm of spec §4.3 for
// wave w injected at surface injector. fromHyperway reports whether w
// was just lifted off an inter-star hyperway into this star.
func (e *Engine) StartTraversal(ctx context.Context, w wave.Wave, injector loc.Surface, fromHyperway bool, reflect Reflector) error {
	directed, isDirected := w.(*wave.DirectedWave)

	to := destinationOf(w)

	// 1. Locate.
	record, err := e.Registry.Locate(ctx, to.Point)
	if err != nil {
		if isDirected {
			pong := directed.Reflect(wave.NotFoundCore(), e.GravitySurface)
			return reflect(ctx, pong)
		}
		e.Log.V(1).Info("dropping reflected wave for unlocatable recipient", "to", to.String())
		return nil
	}

	// 2. Resolve plan.
	plan := record.Kind.TraversalPlan()

	// 3. Determine direction and destination.
	dir, dest := e.resolveDirectionAndDestination(w, injector, to, fromHyperway)

	trav := &Traversal{
		Payload:       w,
		Record:        record,
		Layer:         injector.Layer,
		InjectorLayer: injector.Layer,
		Dir:           dir,
		Dest:          dest,
		To:            to,
		Logger:        e.Log,
		Reflect:       reflect,
	}

	// 4. If the injector layer isn't in the plan, take one step before
	// visiting anything.
	if !plan.Contains(trav.Layer) {
		if _, ok := trav.Next(); !ok {
			return e.exit(ctx, trav)
		}
	}

	return e.run(ctx, trav, reflect)
}

// Resume continues an in-flight traversal from wherever it left off,
// e.g. after a Router sphere has acted on the wave at a driver-managed
// layer and wants the engine to keep stepping it onward.
func (e *Engine) Resume(ctx context.Context, trav *Traversal, reflect Reflector) error {
	return e.run(ctx, trav, reflect)
}

// run implements traverse_to_next_layer: visit the current layer,
// then step, until the plan is exhausted or Dest is reached.
func (e *Engine) run(ctx context.Context, trav *Traversal, reflect Reflector) error {
	for {
		ctx, span := e.Tracer.Start(ctx, "traversal.visit", trace.WithAttributes())
		err := e.visit(ctx, trav, reflect)
		span.End()
		if err != nil {
			return err
		}
		if trav.done {
			return nil
		}

		if trav.AtDestination() {
			return nil
		}

		if _, ok := trav.Next(); !ok {
			return e.exit(ctx, trav)
		}
	}
}

func (e *Engine) exit(ctx context.Context, trav *Traversal) error {
	if trav.Dir == loc.DirectionFabric {
		return e.Exiter.ExitFabric(ctx, trav)
	}
	return e.Exiter.ExitCore(ctx, trav)
}

// visit dispatches topic handling, then star-managed layer handling,
// for the traversal's current layer.
func (e *Engine) visit(ctx context.Context, trav *Traversal, reflect Reflector) error {
	directed, isDirected := trav.Payload.(*wave.DirectedWave)

	// 6. Topic dispatch, before generic layer handling.
	if isDirected && !trav.To.Topic.IsNone() {
		handler, result := e.Topics.lookup(trav.To, directed.From)
		switch result {
		case lookupMatched:
			core := handler(ctx, trav)
			trav.done = true
			return reflect(ctx, directed.Reflect(core, trav.To))
		case lookupForbidden:
			trav.done = true
			return reflect(ctx, directed.Reflect(wave.ForbiddenCore(), trav.To))
		case lookupNoHandler:
			trav.done = true
			return reflect(ctx, directed.Reflect(wave.NotFoundCore(), trav.To))
		}
	}

	// 5. Star-managed layers may short-circuit.
	if visitor, ok := e.Visitors[trav.Layer]; ok {
		result, absorbed, err := visitor.Visit(ctx, trav)
		if err != nil {
			trav.done = true
			if isDirected {
				return reflect(ctx, directed.Reflect(wave.ServerErrorCore(), trav.To))
			}
			e.Log.Error(err, "layer visit failed on reflected wave")
			return nil
		}
		if absorbed {
			trav.done = true
			if isDirected {
				status := result.Status
				if status == 0 {
					status = 200
				}
				core := wave.NewReflectedCore(status)
				if result.Message != "" {
					core.Body = wave.ErrorsSubstance(result.Message)
				}
				return reflect(ctx, directed.Reflect(core, trav.To))
			}
		}
		return nil
	}

	// Any other layer in the plan is terminal for this star: exit in
	// the direction of travel rather than stepping further.
	trav.done = true
	return e.exit(ctx, trav)
}

func destinationOf(w wave.Wave) loc.Surface {
	switch v := w.(type) {
	case *wave.DirectedWave:
		return v.To
	case *wave.ReflectedWave:
		return v.To
	default:
		return loc.Surface{}
	}
}

// resolveDirectionAndDestination implements the four-branch decision
// of spec §4.3 step 3.
func (e *Engine) resolveDirectionAndDestination(w wave.Wave, injector, to loc.Surface, fromHyperway bool) (loc.Direction, *loc.Layer) {
	directed, isDirected := w.(*wave.DirectedWave)

	if fromHyperway {
		return loc.DirectionCore, nil
	}

	if isDirected && directed.To.Point.Equal(directed.From.Point) {
		dest := to.Layer
		return NewDirection(injector.Layer, dest), &dest
	}

	if isDirected && injector.Point.Equal(directed.From.Point) {
		return loc.DirectionFabric, nil
	}

	if isDirected {
		dest := to.Layer
		return loc.DirectionCore, &dest
	}

	// Reflected waves: star-injected traversal toward the original
	// sender, same Core/dest shape as the directed star-injected case.
	dest := to.Layer
	return loc.DirectionCore, &dest
}
