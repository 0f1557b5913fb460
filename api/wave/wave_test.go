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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
)

func surfaceFor(t *testing.T, s string, layer loc.Layer) loc.Surface {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return loc.NewSurface(p, layer)
}

func TestReflectCorrelatesToOriginal(t *testing.T) {
	from := surfaceFor(t, "my-space:client", loc.LayerCore)
	to := surfaceFor(t, "my-space:hello", loc.LayerCore)

	ping := NewPing(from, to, NewDirectedCore(ExtMethod("Say")).WithBody(TextSubstance("ping")))
	pong := ping.Reflect(OkBodyCore(TextSubstance("pong")), to)

	assert.True(t, pong.ReflectionOf.Equal(ping.ID))
	assert.True(t, pong.To.Equal(from))
	assert.True(t, pong.Intended.Equal(to))
	assert.True(t, pong.IsOk())
}

func TestMethodString(t *testing.T) {
	assert.Equal(t, "Ext<Say>", ExtMethod("Say").String())
	assert.Equal(t, "Http<GET>", HttpMethod("GET").String())
}

func TestReflectedCoreConstructors(t *testing.T) {
	assert.Equal(t, 404, NotFoundCore().Status)
	assert.Equal(t, 403, ForbiddenCore().Status)
	assert.Equal(t, 400, BadRequestCore().Status)
	assert.Equal(t, 408, TimeoutCore().Status)
	assert.Equal(t, 500, ServerErrorCore().Status)
	assert.Equal(t, 503, TransportErrorCore().Status)
	assert.True(t, OkCore().IsOk())
}

func TestIDRoundTrip(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equal(parsed))
}
