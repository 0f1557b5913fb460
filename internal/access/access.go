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

// Package access implements the grant-evaluation algebra of spec.md
// §4.6: Or masks union, And masks intersect, and a point's access is
// resolved by walking from itself up to root applying every grant
// whose on/to patterns match along the way.
package access

import (
	"github.com/starlane-io/starlane/api/loc"
)

// Mask is a bitset of the privilege-independent permission bits a
// PermissionsMask grant carries: Create, Select, Delete, Read, Write,
// Execute.
type Mask uint8

const (
	MaskCreate Mask = 1 << iota
	MaskSelect
	MaskDelete
	MaskRead
	MaskWrite
	MaskExecute
)

// Has reports whether every bit in want is set in m.
func (m Mask) Has(want Mask) bool { return m&want == want }

// Op discriminates how a PermissionsMask grant combines with others
// matched along the same walk: Or masks union, And masks intersect.
type Op int

const (
	Or Op = iota
	And
)

// Kind discriminates the three grant variants of spec §4.6.
type Kind int

const (
	KindSuper Kind = iota
	KindPrivilege
	KindPermissions
)

// Pattern matches a Point for grant purposes: an exact point, or (with
// Recursive set) that point and everything below it, mirroring the
// "**" suffix of the original kind-path patterns.
type Pattern struct {
	Prefix    loc.Point
	Recursive bool
}

// Exact matches only p itself.
func Exact(p loc.Point) Pattern { return Pattern{Prefix: p} }

// Subtree matches p and every point beneath it.
func Subtree(p loc.Point) Pattern { return Pattern{Prefix: p, Recursive: true} }

// Matches reports whether candidate falls under the pattern.
func (p Pattern) Matches(candidate loc.Point) bool {
	if !p.Prefix.Route.Equal(candidate.Route) {
		return false
	}
	if len(candidate.Segs) < len(p.Prefix.Segs) {
		return false
	}
	for i, s := range p.Prefix.Segs {
		if !s.Equal(candidate.Segs[i]) {
			return false
		}
	}
	return p.Recursive || len(candidate.Segs) == len(p.Prefix.Segs)
}

// Grant is one access-grant record: a Super, Privilege, or
// PermissionsMask grant, scoped to particles matching OnPoint and
// granted to particles matching ToPoint.
type Grant struct {
	Kind Kind

	// Privilege names the privilege a KindPrivilege grant confers.
	Privilege string

	// Op and Mask carry a KindPermissions grant's combination rule and
	// bitset.
	Op   Op
	Mask Mask

	OnPoint    Pattern
	ToPoint    Pattern
	ByParticle loc.Point
}

// AccessKind discriminates the three shapes access() can answer.
type AccessKind int

const (
	AccessSuper AccessKind = iota
	AccessOwner
	AccessEnumerated
)

// Access is the result of evaluating one (to, on) pair: Super and
// Owner carry no further detail, Enumerated carries the privileges and
// permission bits accumulated along the walk.
type Access struct {
	Kind        AccessKind
	Privileges  map[string]bool
	Permissions Mask
}

// HasPrivilege reports whether the privilege is conferred: always true
// for Super and Owner, looked up for Enumerated.
func (a Access) HasPrivilege(privilege string) bool {
	if a.Kind == AccessSuper || a.Kind == AccessOwner {
		return true
	}
	return a.Privileges[privilege]
}

// HasPermission reports whether every bit in want is granted: always
// true for Super and Owner, checked against the enumerated mask
// otherwise.
func (a Access) HasPermission(want Mask) bool {
	if a.Kind == AccessSuper || a.Kind == AccessOwner {
		return true
	}
	return a.Permissions.Has(want)
}

// OwnerLookup resolves the registered owner of a point, if any.
type OwnerLookup func(on loc.Point) (owner loc.Point, ok bool)

// Evaluate implements spec.md §4.6's access() operation. HYPERUSER
// always receives Super; owners of on receive Owner; otherwise on is
// walked from itself upward to root, applying every grant whose
// OnPoint matches the ancestor under consideration and whose ToPoint
// matches to. Or masks union into the result; And masks are collected
// and intersected into it once the walk completes. A Super grant
// encountered anywhere on the walk short-circuits the rest.
func Evaluate(to, on loc.Point, grants []Grant, owner OwnerLookup, hyperuser loc.Point) Access {
	if to.Equal(hyperuser) {
		return Access{Kind: AccessSuper}
	}
	if o, ok := owner(on); ok && o.Equal(to) {
		return Access{Kind: AccessOwner}
	}

	privileges := map[string]bool{}
	var permissions Mask
	var ands []Mask

	candidate := on
	for {
		for _, g := range grants {
			if !g.OnPoint.Matches(candidate) || !g.ToPoint.Matches(to) {
				continue
			}
			switch g.Kind {
			case KindSuper:
				return Access{Kind: AccessSuper}
			case KindPrivilege:
				privileges[g.Privilege] = true
			case KindPermissions:
				if g.Op == And {
					ands = append(ands, g.Mask)
				} else {
					permissions |= g.Mask
				}
			}
		}
		if len(candidate.Segs) <= 1 {
			break
		}
		parent, err := candidate.Parent()
		if err != nil {
			break
		}
		candidate = parent
	}

	for _, a := range ands {
		permissions &= a
	}

	return Access{Kind: AccessEnumerated, Privileges: privileges, Permissions: permissions}
}
