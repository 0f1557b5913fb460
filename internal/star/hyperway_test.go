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
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/starerr"
)

type recordingSender struct {
	sent []struct {
		hop *wave.DirectedWave
		to  Adjacent
	}
	err error
}

func (s *recordingSender) SendHop(ctx context.Context, hop *wave.DirectedWave, to Adjacent) error {
	s.sent = append(s.sent, struct {
		hop *wave.DirectedWave
		to  Adjacent
	}{hop, to})
	return s.err
}

func testSkel(t *testing.T, self loc.StarKey, adjacents []Adjacent) *Skel {
	t.Helper()
	return &Skel{
		Key:       self,
		Point:     loc.StarPoint(self),
		Kind:      loc.StarKind("relay"),
		Adjacents: adjacents,
		Log:       logr.Discard(),
	}
}

func transportTo(t *testing.T, star loc.StarKey) *wave.DirectedWave {
	t.Helper()
	from := loc.NewSurface(mustPoint(t, "my-space:client"), loc.LayerCore)
	dest := loc.NewSurface(mustPoint(t, "my-space:hello"), loc.LayerCore)
	payload := wave.NewPing(from, dest, wave.NewDirectedCore(wave.ExtMethod("Say")))
	return wrapTransport(payload, loc.NewSurface(loc.StarPoint(star), loc.LayerCore))
}

func TestToHyperwaySendsDirectlyToAdjacentDestination(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	dest := loc.StarKey{Constellation: "alpha", Name: "dest"}
	adjacent := Adjacent{Key: dest, Surface: loc.NewSurface(loc.StarPoint(dest), loc.LayerCore), Kind: loc.StarKind("central")}

	sender := &recordingSender{}
	h := NewHyperway(testSkel(t, self, []Adjacent{adjacent}), sender)

	require.NoError(t, h.ToHyperway(context.Background(), transportTo(t, dest)))
	require.Len(t, sender.sent, 1)
	assert.True(t, sender.sent[0].to.Key.Equal(dest))
}

func TestToHyperwayForwardsThroughSoleForwarder(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	forwarder := loc.StarKey{Constellation: "alpha", Name: "relay0"}
	farAway := loc.StarKey{Constellation: "alpha", Name: "far"}
	adjacent := Adjacent{Key: forwarder, Surface: loc.NewSurface(loc.StarPoint(forwarder), loc.LayerCore), Kind: loc.StarKind("relay")}

	sender := &recordingSender{}
	h := NewHyperway(testSkel(t, self, []Adjacent{adjacent}), sender)

	require.NoError(t, h.ToHyperway(context.Background(), transportTo(t, farAway)))
	require.Len(t, sender.sent, 1)
	assert.True(t, sender.sent[0].to.Key.Equal(forwarder))
}

func TestToHyperwayFatalsWithNoForwarder(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	farAway := loc.StarKey{Constellation: "alpha", Name: "far"}
	nonForwarder := Adjacent{Key: loc.StarKey{Constellation: "alpha", Name: "peer"}, Surface: loc.NewSurface(loc.StarPoint(loc.StarKey{Constellation: "alpha", Name: "peer"}), loc.LayerCore), Kind: loc.StarKind("standalone")}

	sender := &recordingSender{}
	h := NewHyperway(testSkel(t, self, []Adjacent{nonForwarder}), sender)

	err := h.ToHyperway(context.Background(), transportTo(t, farAway))
	require.Error(t, err)
	reason, ok := starerr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, starerr.ReasonFatal, reason)
}

func TestToHyperwayUnimplementedWithMultipleForwarders(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	farAway := loc.StarKey{Constellation: "alpha", Name: "far"}
	fwd1 := Adjacent{Key: loc.StarKey{Constellation: "alpha", Name: "relay0"}, Kind: loc.StarKind("relay")}
	fwd2 := Adjacent{Key: loc.StarKey{Constellation: "alpha", Name: "relay1"}, Kind: loc.StarKind("relay")}

	sender := &recordingSender{}
	h := NewHyperway(testSkel(t, self, []Adjacent{fwd1, fwd2}), sender)

	err := h.ToHyperway(context.Background(), transportTo(t, farAway))
	assert.ErrorIs(t, err, starerr.ErrNotImplemented)
}

func TestFromHyperwayInjectsWhenDestinationIsSelf(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	h := NewHyperway(testSkel(t, self, nil), &recordingSender{})

	transport := transportTo(t, self)
	hop := wrapHop(transport, transport.From, loc.NewSurface(loc.StarPoint(self), loc.LayerCore))

	var injected *wave.DirectedWave
	err := h.FromHyperway(context.Background(), hop, func(ctx context.Context, w *wave.DirectedWave) error {
		injected = w
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, injected)
}

func TestFromHyperwayRejectsNonForwarderForward(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	other := loc.StarKey{Constellation: "alpha", Name: "other"}
	skel := testSkel(t, self, nil)
	skel.Kind = loc.StarKind("standalone")
	h := NewHyperway(skel, &recordingSender{})

	transport := transportTo(t, other)
	hop := wrapHop(transport, transport.From, loc.NewSurface(loc.StarPoint(self), loc.LayerCore))

	err := h.FromHyperway(context.Background(), hop, func(ctx context.Context, w *wave.DirectedWave) error {
		return nil
	})
	require.Error(t, err)
	reason, ok := starerr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, starerr.ReasonFatal, reason)
}

func TestFromHyperwayDropsWhenHopsExceedBound(t *testing.T) {
	self := loc.StarKey{Constellation: "alpha", Name: "self"}
	h := NewHyperway(testSkel(t, self, nil), &recordingSender{})

	transport := transportTo(t, self)
	for i := 0; i <= maxHops; i++ {
		transport = incrementHops(transport)
	}
	hop := wrapHop(transport, transport.From, loc.NewSurface(loc.StarPoint(self), loc.LayerCore))

	err := h.FromHyperway(context.Background(), hop, func(ctx context.Context, w *wave.DirectedWave) error {
		return nil
	})
	require.Error(t, err)
}
