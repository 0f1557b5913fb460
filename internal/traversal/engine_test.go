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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

type fakeRegistry struct {
	records map[string]loc.Record
}

func (r *fakeRegistry) Locate(ctx context.Context, point loc.Point) (loc.Record, error) {
	rec, ok := r.records[point.String()]
	if !ok {
		return loc.Record{}, errRecordNotFound
	}
	return rec, nil
}

var errRecordNotFound = context.DeadlineExceeded

type fakeExiter struct {
	fabricExits, coreExits int
}

func (e *fakeExiter) ExitFabric(ctx context.Context, trav *Traversal) error {
	e.fabricExits++
	return nil
}

func (e *fakeExiter) ExitCore(ctx context.Context, trav *Traversal) error {
	e.coreExits++
	return nil
}

func mustSurface(t *testing.T, s string, layer loc.Layer) loc.Surface {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return loc.NewSurface(p, layer)
}

func TestStartTraversalNotFoundReflects404(t *testing.T) {
	registry := &fakeRegistry{records: map[string]loc.Record{}}
	exiter := &fakeExiter{}
	gravity := mustSurface(t, "<<alpha:star0>>", loc.LayerGravity)
	engine := New(registry, exiter, gravity)

	from := mustSurface(t, "my-space:client", loc.LayerCore)
	to := mustSurface(t, "my-space:missing", loc.LayerCore)
	ping := wave.NewPing(from, to, wave.NewDirectedCore(wave.ExtMethod("Say")))

	var reflected *wave.ReflectedWave
	err := engine.StartTraversal(context.Background(), ping, from, false, func(ctx context.Context, r *wave.ReflectedWave) error {
		reflected = r
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, reflected)
	assert.Equal(t, 404, reflected.Core.Status)
}

func TestStartTraversalExitsToCoreAtFirstDriverManagedLayer(t *testing.T) {
	toPoint, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)
	registry := &fakeRegistry{records: map[string]loc.Record{
		toPoint.String(): {Point: toPoint, Kind: loc.MechtronKind()},
	}}
	exiter := &fakeExiter{}
	gravity := mustSurface(t, "<<alpha:star0>>", loc.LayerGravity)
	engine := New(registry, exiter, gravity)

	visited := []loc.Layer{}
	recordingVisitor := LayerVisitorFunc(func(ctx context.Context, trav *Traversal) (VisitResult, bool, error) {
		visited = append(visited, trav.Layer)
		return VisitResult{}, false, nil
	})
	engine.Visitors[loc.LayerField] = recordingVisitor
	engine.Visitors[loc.LayerShell] = recordingVisitor

	from := mustSurface(t, "my-space:client", loc.LayerCore)
	to := mustSurface(t, "my-space:hello", loc.LayerCore)
	ping := wave.NewPing(from, to, wave.NewDirectedCore(wave.ExtMethod("Say")))

	injector := mustSurface(t, "my-space:hello", loc.LayerGravity)
	err = engine.StartTraversal(context.Background(), ping, injector, true, func(ctx context.Context, r *wave.ReflectedWave) error {
		return nil
	})
	require.NoError(t, err)

	// Portal is the first layer in the Mechtron plan with no
	// star-managed visitor; the engine exits there in the direction of
	// travel (ExitCore), handing the traversal to driver dispatch
	// instead of stalling.
	assert.Equal(t, []loc.Layer{loc.LayerField, loc.LayerShell}, visited)
	assert.Equal(t, 1, exiter.coreExits)
	assert.Equal(t, 0, exiter.fabricExits)
}

// roundTripExiter simulates a driver-driver dispatch loop outside the
// traversal package: each ExitCore advances the traversal to its next
// layer and resumes it, until the plan is exhausted, at which point it
// answers the directed wave.
type roundTripExiter struct {
	engine *Engine
	layers []loc.Layer
}

func (e *roundTripExiter) ExitFabric(ctx context.Context, trav *Traversal) error { return nil }

func (e *roundTripExiter) ExitCore(ctx context.Context, trav *Traversal) error {
	e.layers = append(e.layers, trav.Layer)
	if _, ok := trav.Next(); ok {
		return e.engine.Resume(ctx, trav, trav.Reflect)
	}
	directed, isDirected := trav.Payload.(*wave.DirectedWave)
	if !isDirected {
		return nil
	}
	core := wave.OkBodyCore(wave.TextSubstance("pong"))
	return trav.Reflect(ctx, directed.Reflect(core, trav.To))
}

func TestStartTraversalFullMechtronRoundTrip(t *testing.T) {
	toPoint, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)
	registry := &fakeRegistry{records: map[string]loc.Record{
		toPoint.String(): {Point: toPoint, Kind: loc.MechtronKind()},
	}}
	gravity := mustSurface(t, "<<alpha:star0>>", loc.LayerGravity)

	visited := []loc.Layer{}
	recordingVisitor := LayerVisitorFunc(func(ctx context.Context, trav *Traversal) (VisitResult, bool, error) {
		visited = append(visited, trav.Layer)
		return VisitResult{}, false, nil
	})

	exiter := &roundTripExiter{}
	engine := New(registry, exiter, gravity)
	exiter.engine = engine
	engine.Visitors[loc.LayerField] = recordingVisitor
	engine.Visitors[loc.LayerShell] = recordingVisitor

	from := mustSurface(t, "my-space:client", loc.LayerCore)
	to := mustSurface(t, "my-space:hello", loc.LayerCore)
	ping := wave.NewPing(from, to, wave.NewDirectedCore(wave.ExtMethod("Say")))

	var reflected *wave.ReflectedWave
	injector := mustSurface(t, "my-space:hello", loc.LayerGravity)
	err = engine.StartTraversal(context.Background(), ping, injector, true, func(ctx context.Context, r *wave.ReflectedWave) error {
		reflected = r
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []loc.Layer{loc.LayerField, loc.LayerShell}, visited)
	assert.Equal(t, []loc.Layer{loc.LayerPortal, loc.LayerHost, loc.LayerGuest, loc.LayerCore}, exiter.layers)
	require.NotNil(t, reflected)
	assert.Equal(t, 200, reflected.Core.Status)
	assert.Equal(t, wave.TextSubstance("pong"), reflected.Core.Body)
}

func TestTopicDispatchForbiddenVsNotFound(t *testing.T) {
	toPoint, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)
	registry := &fakeRegistry{records: map[string]loc.Record{
		toPoint.String(): {Point: toPoint, Kind: loc.AppKind()},
	}}
	exiter := &fakeExiter{}
	gravity := mustSurface(t, "<<alpha:star0>>", loc.LayerGravity)
	engine := New(registry, exiter, gravity)

	topicSurface := mustSurface(t, "my-space:hello", loc.LayerShell).WithTopic(loc.NamedTopic("events"))
	engine.Topics.Register(topicSurface, loc.SourcePattern{PointPrefix: "LOCAL::my-space:allowed"}, func(ctx context.Context, trav *Traversal) wave.ReflectedCore {
		return wave.OkCore()
	})

	from := mustSurface(t, "my-space:denied", loc.LayerCore)
	ping := wave.NewPing(from, topicSurface, wave.NewDirectedCore(wave.ExtMethod("Say")))

	var reflected *wave.ReflectedWave
	err = engine.StartTraversal(context.Background(), ping, from, false, func(ctx context.Context, r *wave.ReflectedWave) error {
		reflected = r
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 403, reflected.Core.Status)

	otherTopic := mustSurface(t, "my-space:hello", loc.LayerShell).WithTopic(loc.NamedTopic("unregistered"))
	ping2 := wave.NewPing(from, otherTopic, wave.NewDirectedCore(wave.ExtMethod("Say")))
	err = engine.StartTraversal(context.Background(), ping2, from, false, func(ctx context.Context, r *wave.ReflectedWave) error {
		reflected = r
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 404, reflected.Core.Status)
}
