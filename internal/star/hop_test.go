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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

func mustPoint(t *testing.T, s string) loc.Point {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func TestHopWrapUnwrapRoundTrip(t *testing.T) {
	clientSurface := loc.NewSurface(mustPoint(t, "my-space:client"), loc.LayerCore)
	destSurface := loc.NewSurface(mustPoint(t, "my-space:hello"), loc.LayerCore)
	payload := wave.NewPing(clientSurface, destSurface, wave.NewDirectedCore(wave.ExtMethod("Say")))

	starA := loc.StarKey{Constellation: "alpha", Name: "star0"}
	starASurface := loc.NewSurface(loc.StarPoint(starA), loc.LayerCore)

	transport := wrapTransport(payload, starASurface)
	assert.Equal(t, 0, hopsOf(transport))

	hop := wrapHop(transport, clientSurface, starASurface)

	unwrappedTransport, ok := unwrapHop(hop)
	require.True(t, ok)
	assert.Equal(t, transport.ID, unwrappedTransport.ID)

	unwrappedPayload, ok := unwrapTransport(unwrappedTransport)
	require.True(t, ok)
	assert.Equal(t, payload.ID, unwrappedPayload.ID)
}

func TestIncrementHopsDoesNotMutateOriginal(t *testing.T) {
	clientSurface := loc.NewSurface(mustPoint(t, "my-space:client"), loc.LayerCore)
	payload := wave.NewPing(clientSurface, clientSurface, wave.NewDirectedCore(wave.ExtMethod("Say")))
	transport := wrapTransport(payload, clientSurface)

	next := incrementHops(transport)
	assert.Equal(t, 0, hopsOf(transport))
	assert.Equal(t, 1, hopsOf(next))

	next2 := incrementHops(next)
	assert.Equal(t, 1, hopsOf(next))
	assert.Equal(t, 2, hopsOf(next2))
}

func TestUnwrapRejectsWrongSubstanceKind(t *testing.T) {
	clientSurface := loc.NewSurface(mustPoint(t, "my-space:client"), loc.LayerCore)
	notAHop := wave.NewPing(clientSurface, clientSurface, wave.NewDirectedCore(wave.ExtMethod("Say")))

	_, ok := unwrapHop(notAHop)
	assert.False(t, ok)

	_, ok = unwrapTransport(notAHop)
	assert.False(t, ok)
}
