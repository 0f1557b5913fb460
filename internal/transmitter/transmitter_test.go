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

package transmitter

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/exchanger"
)

func testSurface(t *testing.T, s string) loc.Surface {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return loc.NewSurface(p, loc.LayerCore)
}

func TestDirectRequiresFromAndTo(t *testing.T) {
	tr := DefaultStrategies(TxRouter{Tx: make(chan wave.Wave, 1)}, nil)
	proto := NewProto(wave.NewDirectedCore(wave.ExtMethod("Say")))

	_, err := tr.Direct(context.Background(), proto)
	assert.Error(t, err)
}

func TestDirectRoutesAndAwaitsReply(t *testing.T) {
	tx := make(chan wave.Wave, 1)
	fc := clocktesting.NewFakeClock(time.Now())
	ex := exchanger.New(fc, logr.Discard())
	tr := DefaultStrategies(TxRouter{Tx: tx}, ex)

	from := testSurface(t, "my-space:client")
	to := testSurface(t, "my-space:hello")
	proto := NewProto(wave.NewDirectedCore(wave.ExtMethod("Say"))).From(from).To(to)

	done := make(chan *wave.ReflectedWave, 1)
	go func() {
		reply, err := tr.Direct(context.Background(), proto)
		assert.NoError(t, err)
		done <- reply
	}()

	sent := (<-tx).(*wave.DirectedWave)
	assert.True(t, sent.From.Equal(from))
	assert.True(t, sent.To.Equal(to))

	ex.Reflected(sent.Reflect(wave.OkCore(), to))

	reply := <-done
	assert.True(t, reply.IsOk())
}
