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

package loc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceEquality(t *testing.T) {
	p, err := ParsePoint("my-space:app")
	require.NoError(t, err)

	a := NewSurface(p, LayerCore)
	b := NewSurface(p, LayerCore)
	assert.True(t, a.Equal(b))

	c := NewSurface(p, LayerShell)
	assert.False(t, a.Equal(c))
}

func TestSurfaceWithTopic(t *testing.T) {
	p, err := ParsePoint("my-space:app")
	require.NoError(t, err)

	s := NewSurface(p, LayerShell).WithTopic(NamedTopic("events"))
	assert.False(t, s.Topic.IsNone())
	assert.Equal(t, "events", s.Topic.Name())
}

func TestTopicMatches(t *testing.T) {
	assert.True(t, AnyTopic.Matches(NamedTopic("events")))
	assert.True(t, NamedTopic("events").Matches(NamedTopic("events")))
	assert.False(t, NamedTopic("events").Matches(NamedTopic("other")))
	assert.True(t, NoTopic.Matches(NoTopic))
}

func TestSourcePatternMatches(t *testing.T) {
	p, err := ParsePoint("my-space:app")
	require.NoError(t, err)
	source := NewSurface(p, LayerCore)

	assert.True(t, AnySource.Matches(source))

	pattern := SourcePattern{PointPrefix: "LOCAL::my-space"}
	assert.True(t, pattern.Matches(source))

	other := SourcePattern{PointPrefix: "LOCAL::other-space"}
	assert.False(t, other.Matches(source))
}
