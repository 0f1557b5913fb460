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

package driver

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/traversal"
)

func TestDriverRunnerTraverseRouterSphereSignalsContinue(t *testing.T) {
	point, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)

	var routed wave.Wave
	runner := NewDriverRunner(&routerStubDriver{sphere: RouterSphere(RouterFunc(func(ctx context.Context, w wave.Wave) error {
		routed = w
		return nil
	}))}, logr.Discard())
	require.NoError(t, runner.OnAdded(context.Background()))

	ping := wave.NewPing(loc.NewSurface(point, loc.LayerCore), loc.NewSurface(point, loc.LayerCore), wave.NewDirectedCore(wave.ExtMethod("noop")))
	trav := &traversal.Traversal{Payload: ping, Record: loc.Record{Point: point, Kind: loc.MechtronKind()}, Layer: loc.LayerPortal}

	cont, err := runner.Traverse(context.Background(), trav)
	require.NoError(t, err)
	assert.True(t, cont)
	assert.Same(t, wave.Wave(ping), routed)
}

func TestDriverRunnerTraverseHandlerSphereAnswersAndStops(t *testing.T) {
	point, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)

	runner := NewDriverRunner(&routerStubDriver{sphere: HandlerSphere(HandlerFunc(func(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error) {
		return wave.OkBodyCore(wave.TextSubstance("pong")), nil
	}))}, logr.Discard())
	require.NoError(t, runner.OnAdded(context.Background()))

	from := loc.NewSurface(point, loc.LayerCore)
	ping := wave.NewPing(from, from, wave.NewDirectedCore(wave.ExtMethod("noop")))

	var reflected *wave.ReflectedWave
	trav := &traversal.Traversal{
		Payload: ping,
		Record:  loc.Record{Point: point, Kind: loc.MechtronKind()},
		Layer:   loc.LayerCore,
		To:      from,
		Reflect: func(ctx context.Context, r *wave.ReflectedWave) error {
			reflected = r
			return nil
		},
	}

	cont, err := runner.Traverse(context.Background(), trav)
	require.NoError(t, err)
	assert.False(t, cont)
	require.NotNil(t, reflected)
	assert.Equal(t, 200, reflected.Core.Status)
	assert.Equal(t, wave.TextSubstance("pong"), reflected.Core.Body)
}

func TestDriverRunnerHandleRunsDirectedPathStandalone(t *testing.T) {
	point, err := loc.ParsePoint("my-space:hello")
	require.NoError(t, err)

	runner := NewDriverRunner(&routerStubDriver{sphere: HandlerSphere(HandlerFunc(func(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error) {
		return wave.OkCore(), nil
	}))}, logr.Discard())
	require.NoError(t, runner.OnAdded(context.Background()))

	from := loc.NewSurface(point, loc.LayerCore)
	ping := wave.NewPing(from, from, wave.NewDirectedCore(wave.ExtMethod("noop")))

	var reflected *wave.ReflectedWave
	trav := &traversal.Traversal{
		Payload: ping,
		Record:  loc.Record{Point: point, Kind: loc.MechtronKind()},
		To:      from,
		Reflect: func(ctx context.Context, r *wave.ReflectedWave) error {
			reflected = r
			return nil
		},
	}

	require.NoError(t, runner.Handle(context.Background(), trav))
	require.NotNil(t, reflected)
	assert.Equal(t, 200, reflected.Core.Status)
}

type addableDriver struct {
	routerStubDriver
	added HyperDriverFactory
}

func (d *addableDriver) AddDriver(ctx context.Context, f HyperDriverFactory) error {
	d.added = f
	return nil
}

func TestDriverRunnerAddDriverDelegatesWhenSupported(t *testing.T) {
	d := &addableDriver{}
	runner := NewDriverRunner(d, logr.Discard())
	require.NoError(t, runner.OnAdded(context.Background()))

	f := &stubFactory{kind: loc.AppKind(), sel: selectorFor(loc.AppKind()), avail: AvailInternal, driver: &stubDriver{}}
	require.NoError(t, runner.AddDriver(context.Background(), f))
	assert.Same(t, HyperDriverFactory(f), d.added)
}

func TestDriverRunnerAddDriverRejectsUnsupportedDriver(t *testing.T) {
	runner := NewDriverRunner(&stubDriver{}, logr.Discard())
	require.NoError(t, runner.OnAdded(context.Background()))

	f := &stubFactory{kind: loc.AppKind(), sel: selectorFor(loc.AppKind()), avail: AvailInternal, driver: &stubDriver{}}
	err := runner.AddDriver(context.Background(), f)
	assert.Error(t, err)
}
