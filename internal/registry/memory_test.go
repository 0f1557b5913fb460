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

package registry

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/internal/access"
	"github.com/starlane-io/starlane/internal/starerr"
)

func mustPoint(t *testing.T, s string) loc.Point {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func TestRegisterThenLocateAndRecordAgree(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()
	p := mustPoint(t, "my-space:app:db")
	owner := mustPoint(t, "my-space:users:alice")

	require.NoError(t, r.Register(ctx, Registration{Point: p, Kind: loc.AppKind(), Owner: owner}))

	star := loc.StarKey{Constellation: "alpha", Name: "star0"}
	require.NoError(t, r.AssignStar(ctx, p, star))

	rec, err := r.Locate(ctx, p)
	require.NoError(t, err)
	assert.True(t, rec.Star.Equal(star))
	assert.True(t, rec.Kind.Equal(loc.AppKind()))

	rec2, err := r.Record(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, rec, rec2)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()
	p := mustPoint(t, "my-space:app:db")

	require.NoError(t, r.Register(ctx, Registration{Point: p, Kind: loc.AppKind()}))
	err := r.Register(ctx, Registration{Point: p, Kind: loc.AppKind()})
	require.Error(t, err)
	reason, ok := starerr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, starerr.ReasonBadRequest, reason)
}

func TestLocateUnknownPointIsNotFound(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	_, err := r.Locate(context.Background(), mustPoint(t, "my-space:nobody"))
	require.Error(t, err)
	reason, ok := starerr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, starerr.ReasonNotFound, reason)
}

func TestSequenceIsMonotonePerPoint(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()
	p := mustPoint(t, "my-space:app:db")
	require.NoError(t, r.Register(ctx, Registration{Point: p, Kind: loc.AppKind()}))

	first, err := r.Sequence(ctx, p)
	require.NoError(t, err)
	second, err := r.Sequence(ctx, p)
	require.NoError(t, err)
	assert.Greater(t, second, first)
}

func TestSelectFiltersByRootAndKind(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()

	db := mustPoint(t, "my-space:app:db")
	cache := mustPoint(t, "my-space:app:cache")
	user := mustPoint(t, "my-space:users:alice")

	require.NoError(t, r.Register(ctx, Registration{Point: db, Kind: loc.AppKind()}))
	require.NoError(t, r.Register(ctx, Registration{Point: cache, Kind: loc.AppKind()}))
	require.NoError(t, r.Register(ctx, Registration{Point: user, Kind: loc.UserKind()}))

	appSel := loc.KindSelector{MatchLabels: map[string]string{"category": "App"}}
	stubs, err := r.Select(ctx, Selector{Root: mustPoint(t, "my-space:app"), Recursive: true, KindSel: &appSel})
	require.NoError(t, err)
	require.Len(t, stubs, 2)
	assert.Equal(t, cache.String(), stubs[0].Point.String())
	assert.Equal(t, db.String(), stubs[1].Point.String())
}

func TestGrantAccessListAndRemove(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()

	on := mustPoint(t, "my-space:app")
	to := mustPoint(t, "my-space:users")
	by := mustPoint(t, "my-space:users:admin")

	grant := access.Grant{
		Kind:       access.KindPermissions,
		Op:         access.Or,
		Mask:       access.MaskRead,
		OnPoint:    access.Subtree(on),
		ToPoint:    access.Subtree(to),
		ByParticle: by,
	}
	require.NoError(t, r.Grant(ctx, grant))

	alice := mustPoint(t, "my-space:users:alice")
	got, err := r.Access(ctx, alice, mustPoint(t, "my-space:app:db"))
	require.NoError(t, err)
	assert.True(t, got.HasPermission(access.MaskRead))

	listed, err := r.ListAccess(ctx, on)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, r.RemoveAccess(ctx, on, by))
	listed, err = r.ListAccess(ctx, on)
	require.NoError(t, err)
	assert.Empty(t, listed)

	got, err = r.Access(ctx, alice, mustPoint(t, "my-space:app:db"))
	require.NoError(t, err)
	assert.False(t, got.HasPermission(access.MaskRead))
}

func TestChownGrantsOwnerAccessToNewOwner(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	ctx := context.Background()

	p := mustPoint(t, "my-space:app:db")
	original := mustPoint(t, "my-space:users:alice")
	require.NoError(t, r.Register(ctx, Registration{Point: p, Kind: loc.AppKind(), Owner: original}))

	bob := mustPoint(t, "my-space:users:bob")
	got, err := r.Access(ctx, bob, p)
	require.NoError(t, err)
	assert.NotEqual(t, access.AccessOwner, got.Kind)

	require.NoError(t, r.Chown(ctx, p, bob))
	got, err = r.Access(ctx, bob, p)
	require.NoError(t, err)
	assert.Equal(t, access.AccessOwner, got.Kind)
}

func TestHyperuserAlwaysSuper(t *testing.T) {
	r := NewMemRegistry(logr.Discard())
	got, err := r.Access(context.Background(), loc.HyperUserPoint(), mustPoint(t, "my-space:app:db"))
	require.NoError(t, err)
	assert.Equal(t, access.AccessSuper, got.Kind)
}
