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

func TestParsePoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{name: "bare space", in: "my-space"},
		{name: "space and base", in: "my-space:app"},
		{name: "nested base", in: "my-space:app:instance"},
		{name: "explicit local route", in: "LOCAL::my-space:app"},
		{name: "global route", in: "GLOBAL::my-space:app"},
		{name: "domain route", in: "example.com::my-space:app"},
		{name: "tag route", in: "[my-tag]::my-space:app"},
		{name: "star route", in: "<<alpha:central0>>::my-space:app"},
		{name: "filesystem file", in: "my-space:app:/file.txt"},
		{name: "filesystem dir and file", in: "my-space:app:/dir/file.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.String())
		})
	}
}

func TestPointPushParentLaw(t *testing.T) {
	p, err := ParsePoint("my-space:app")
	require.NoError(t, err)

	extended, err := p.Push(BaseSeg("instance"))
	require.NoError(t, err)

	parent, err := extended.Parent()
	require.NoError(t, err)

	assert.True(t, p.Equal(parent), "push(s).parent() must equal the original point")
}

func TestPointPushRejectsIllegalSegments(t *testing.T) {
	p, err := ParsePoint("my-space:app")
	require.NoError(t, err)

	_, err = p.Push(SpaceSeg("other"))
	assert.Error(t, err, "space segment only valid at root")

	withFile, err := p.Push(FsRootSeg())
	require.NoError(t, err)
	withFile, err = withFile.Push(FileSeg("f.txt"))
	require.NoError(t, err)

	_, err = withFile.Push(BaseSeg("nope"))
	assert.Error(t, err, "cannot push any segment after a file segment")
}

func TestParentOfRootIsError(t *testing.T) {
	p, err := ParsePoint("")
	require.NoError(t, err)
	_, err = p.Parent()
	assert.Error(t, err)
}

func TestRouteRoundTrip(t *testing.T) {
	tests := []string{"LOCAL", "GLOBAL", "REMOTE", "example.com", "[tag]", "<<alpha:central0>>", "<<alpha:relay>>"}
	for _, s := range tests {
		r, err := ParseRoute(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}
}

func TestStarKeyWithAndWithoutIndex(t *testing.T) {
	r, err := ParseRoute("<<alpha:central3>>")
	require.NoError(t, err)
	require.Equal(t, RouteStar, r.Kind)
	assert.Equal(t, "alpha", r.Star.Constellation)
	assert.Equal(t, "central", r.Star.Name)
	assert.True(t, r.Star.HasIndex)
	assert.Equal(t, 3, r.Star.Index)

	r2, err := ParseRoute("<<alpha:relay>>")
	require.NoError(t, err)
	assert.False(t, r2.Star.HasIndex)
	assert.Equal(t, "relay", r2.Star.Name)
}
