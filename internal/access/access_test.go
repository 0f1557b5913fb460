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

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starlane-io/starlane/api/loc"
)

func mustPoint(t *testing.T, s string) loc.Point {
	t.Helper()
	p, err := loc.ParsePoint(s)
	require.NoError(t, err)
	return p
}

func noOwner(loc.Point) (loc.Point, bool) { return loc.Point{}, false }

func TestEvaluateHyperuserIsAlwaysSuper(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:db")

	got := Evaluate(hyperuser, on, nil, noOwner, hyperuser)
	assert.Equal(t, AccessSuper, got.Kind)
}

func TestEvaluateOwnerOfOn(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:db")
	owner := mustPoint(t, "my-space:users:alice")

	lookup := func(p loc.Point) (loc.Point, bool) {
		if p.Equal(on) {
			return owner, true
		}
		return loc.Point{}, false
	}

	got := Evaluate(owner, on, nil, lookup, hyperuser)
	assert.Equal(t, AccessOwner, got.Kind)
}

func TestEvaluateGrantInheritedFromAncestor(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:db")
	app := mustPoint(t, "my-space:app")
	users := mustPoint(t, "my-space:users")

	grants := []Grant{
		{
			Kind:    KindPermissions,
			Op:      Or,
			Mask:    MaskRead | MaskSelect,
			OnPoint: Subtree(app),
			ToPoint: Subtree(users),
		},
	}

	alice := mustPoint(t, "my-space:users:alice")
	got := Evaluate(alice, on, grants, noOwner, hyperuser)
	require.Equal(t, AccessEnumerated, got.Kind)
	assert.True(t, got.HasPermission(MaskRead))
	assert.True(t, got.HasPermission(MaskSelect))
	assert.False(t, got.HasPermission(MaskWrite))
}

func TestEvaluateUnrelatedGrantDoesNotApply(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:db")
	other := mustPoint(t, "my-space:other")
	users := mustPoint(t, "my-space:users")

	grants := []Grant{
		{Kind: KindPermissions, Op: Or, Mask: MaskRead, OnPoint: Subtree(other), ToPoint: Subtree(users)},
	}

	alice := mustPoint(t, "my-space:users:alice")
	got := Evaluate(alice, on, grants, noOwner, hyperuser)
	require.Equal(t, AccessEnumerated, got.Kind)
	assert.False(t, got.HasPermission(MaskRead))
}

func TestEvaluateAndMaskIntersectsOrUnion(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:db")
	app := mustPoint(t, "my-space:app")
	users := mustPoint(t, "my-space:users")

	grants := []Grant{
		{Kind: KindPermissions, Op: Or, Mask: MaskRead | MaskWrite | MaskSelect, OnPoint: Subtree(app), ToPoint: Subtree(users)},
		{Kind: KindPermissions, Op: And, Mask: MaskRead | MaskSelect, OnPoint: Subtree(app), ToPoint: Subtree(users)},
	}

	alice := mustPoint(t, "my-space:users:alice")
	got := Evaluate(alice, on, grants, noOwner, hyperuser)
	assert.True(t, got.HasPermission(MaskRead))
	assert.True(t, got.HasPermission(MaskSelect))
	assert.False(t, got.HasPermission(MaskWrite), "And mask must strip the bit the Or union granted but the And excluded")
}

func TestEvaluatePrivilegeGrant(t *testing.T) {
	hyperuser := mustPoint(t, "my-space:hyperuser")
	on := mustPoint(t, "my-space:app:users:bob")
	onPattern := mustPoint(t, "my-space:app:users")
	mechtrons := mustPoint(t, "my-space:app")

	grants := []Grant{
		{Kind: KindPrivilege, Privilege: "property:email:read", OnPoint: Subtree(onPattern), ToPoint: Subtree(mechtrons)},
	}

	caller := mustPoint(t, "my-space:app:frontend")
	got := Evaluate(caller, on, grants, noOwner, hyperuser)
	assert.True(t, got.HasPrivilege("property:email:read"))
	assert.False(t, got.HasPrivilege("property:email:write"))
}

func TestPatternExactDoesNotMatchDescendant(t *testing.T) {
	p := Exact(mustPoint(t, "my-space:app"))
	assert.True(t, p.Matches(mustPoint(t, "my-space:app")))
	assert.False(t, p.Matches(mustPoint(t, "my-space:app:db")))
}

func TestPatternSubtreeMatchesDescendant(t *testing.T) {
	p := Subtree(mustPoint(t, "my-space:app"))
	assert.True(t, p.Matches(mustPoint(t, "my-space:app")))
	assert.True(t, p.Matches(mustPoint(t, "my-space:app:db")))
	assert.False(t, p.Matches(mustPoint(t, "my-space:other")))
}
