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
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Category discriminates the variants of Kind.
type Category int

const (
	CategorySpace Category = iota
	CategoryBase
	CategoryUser
	CategoryApp
	CategoryMechtron
	CategoryControl
	CategoryDriver
	CategoryStar
	CategoryFile
	CategoryArtifact
)

var categoryNames = [...]string{
	CategorySpace:    "Space",
	CategoryBase:     "Base",
	CategoryUser:     "User",
	CategoryApp:      "App",
	CategoryMechtron: "Mechtron",
	CategoryControl:  "Control",
	CategoryDriver:   "Driver",
	CategoryStar:     "Star",
	CategoryFile:     "File",
	CategoryArtifact: "Artifact",
}

func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Specific narrows a Kind with a vendor:product:variant:version tuple,
// per the kind syntax of spec.md §6.
type Specific struct {
	Vendor  string
	Product string
	Variant string
	Version *semver.Version
}

func (s *Specific) String() string {
	if s == nil {
		return ""
	}
	v := ""
	if s.Version != nil {
		v = s.Version.String()
	}
	return fmt.Sprintf("%s:%s:%s:%s", s.Vendor, s.Product, s.Variant, v)
}

// ParseSpecific parses a "vendor:product:variant:version" tuple.
func ParseSpecific(s string) (*Specific, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("loc: malformed specific %q: want vendor:product:variant:version", s)
	}
	spec := &Specific{Vendor: parts[0], Product: parts[1], Variant: parts[2]}
	if parts[3] != "" {
		v, err := semver.NewVersion(parts[3])
		if err != nil {
			return nil, fmt.Errorf("loc: malformed specific version %q: %w", s, err)
		}
		spec.Version = v
	}
	return spec, nil
}

// StarSub names a star sub-kind, e.g. "central", "portal", "relay".
// Whether a sub-kind forwards waves toward non-adjacent stars is
// looked up via IsForwarder.
type StarSub string

var forwarderStarSubs = map[StarSub]bool{
	"central": true,
	"relay":   true,
	"portal":  true,
}

func (s StarSub) IsForwarder() bool { return forwarderStarSubs[s] }

// FileSub and ArtSub name file and artifact sub-kinds respectively
// (e.g. "file", "dir" / "bundle", "raw").
type FileSub string
type ArtSub string

// Kind is the tagged variant over a particle's category, carrying a
// sub-kind when the category requires one (Star, File, Artifact) and
// an optional Specific narrowing.
type Kind struct {
	Category Category
	StarSub  StarSub
	FileSub  FileSub
	ArtSub   ArtSub
	Specific *Specific
}

func SpaceKind() Kind    { return Kind{Category: CategorySpace} }
func BaseKind() Kind     { return Kind{Category: CategoryBase} }
func UserKind() Kind     { return Kind{Category: CategoryUser} }
func AppKind() Kind      { return Kind{Category: CategoryApp} }
func MechtronKind() Kind { return Kind{Category: CategoryMechtron} }
func ControlKind() Kind  { return Kind{Category: CategoryControl} }
func DriverKind() Kind   { return Kind{Category: CategoryDriver} }

func StarKind(sub StarSub) Kind { return Kind{Category: CategoryStar, StarSub: sub} }
func FileKind(sub FileSub) Kind { return Kind{Category: CategoryFile, FileSub: sub} }
func ArtifactKind(sub ArtSub) Kind {
	return Kind{Category: CategoryArtifact, ArtSub: sub}
}

func (k Kind) WithSpecific(s *Specific) Kind {
	k.Specific = s
	return k
}

func (k Kind) String() string {
	var sub string
	switch k.Category {
	case CategoryStar:
		sub = string(k.StarSub)
	case CategoryFile:
		sub = string(k.FileSub)
	case CategoryArtifact:
		sub = string(k.ArtSub)
	}
	base := k.Category.String()
	if sub != "" {
		base = fmt.Sprintf("%s<%s>", base, sub)
	}
	if k.Specific != nil {
		base = fmt.Sprintf("%s(%s)", base, k.Specific.String())
	}
	return base
}

func (k Kind) Equal(o Kind) bool {
	return k.Category == o.Category && k.StarSub == o.StarSub &&
		k.FileSub == o.FileSub && k.ArtSub == o.ArtSub
}

// IsForwarder reports whether waves addressed to non-adjacent stars
// may be forwarded through a star of this kind (spec §4.5).
func (k Kind) IsForwarder() bool {
	return k.Category == CategoryStar && k.StarSub.IsForwarder()
}

// ParseKind parses the "Base<Sub>(vendor:product:variant:version)"
// syntax of spec.md §6; the specific clause is optional.
func ParseKind(s string) (Kind, error) {
	base := s
	specStr := ""
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return Kind{}, fmt.Errorf("loc: malformed kind %q: unterminated specific clause", s)
		}
		base = s[:i]
		specStr = s[i+1 : len(s)-1]
	}

	sub := ""
	name := base
	if i := strings.IndexByte(base, '<'); i >= 0 {
		if !strings.HasSuffix(base, ">") {
			return Kind{}, fmt.Errorf("loc: malformed kind %q: unterminated sub-kind clause", s)
		}
		name = base[:i]
		sub = base[i+1 : len(base)-1]
	}

	var k Kind
	switch name {
	case "Space":
		k = SpaceKind()
	case "Base":
		k = BaseKind()
	case "User":
		k = UserKind()
	case "App":
		k = AppKind()
	case "Mechtron":
		k = MechtronKind()
	case "Control":
		k = ControlKind()
	case "Driver":
		k = DriverKind()
	case "Star":
		k = StarKind(StarSub(sub))
	case "File":
		k = FileKind(FileSub(sub))
	case "Artifact":
		k = ArtifactKind(ArtSub(sub))
	default:
		return Kind{}, fmt.Errorf("loc: unrecognized kind category %q", name)
	}

	if specStr != "" {
		spec, err := ParseSpecific(specStr)
		if err != nil {
			return Kind{}, fmt.Errorf("loc: parsing kind %q: %w", s, err)
		}
		k.Specific = spec
	}
	return k, nil
}

// TraversalPlan is the ordered, total subset of layers a wave bound
// for a particle of some Kind must visit. "Total" means a traversal
// may be injected at any layer and the engine advances to the next
// layer present in the plan, in either direction.
type TraversalPlan struct {
	Layers []Layer
}

// StdPlan is the traversal plan for ordinary service particles:
// Field, Shell, Core.
var StdPlan = TraversalPlan{Layers: []Layer{LayerField, LayerShell, LayerCore}}

// MechtronPlan is the traversal plan for guest-hosted Mechtrons:
// Field, Shell, Portal, Host, Guest, Core.
var MechtronPlan = TraversalPlan{Layers: []Layer{
	LayerField, LayerShell, LayerPortal, LayerHost, LayerGuest, LayerCore,
}}

// DriverPlan is the traversal plan for the meta-driver and star
// particles themselves: Field, Shell, Core (same shape as Std, kept
// distinct so a future divergence doesn't require touching callers).
var DriverPlan = StdPlan

// TraversalPlan returns the plan governing waves addressed to
// particles of kind k.
func (k Kind) TraversalPlan() TraversalPlan {
	switch k.Category {
	case CategoryMechtron:
		return MechtronPlan
	case CategoryDriver, CategoryStar:
		return DriverPlan
	default:
		return StdPlan
	}
}

// Contains reports whether layer l is part of the plan.
func (p TraversalPlan) Contains(l Layer) bool {
	for _, pl := range p.Layers {
		if pl == l {
			return true
		}
	}
	return false
}

// Next advances from an injection point cur to the next layer present
// in the plan in direction dir. If cur itself is in the plan, the
// search starts from cur's neighbor; if cur is not in the plan (an
// injection between defined layers), the search includes cur's
// position. Returns false when the plan has no further layer in that
// direction.
func (p TraversalPlan) Next(cur Layer, dir Direction) (Layer, bool) {
	l := cur
	for {
		next, ok := l.Step(dir)
		if !ok {
			return 0, false
		}
		l = next
		if p.Contains(l) {
			return l, true
		}
	}
}

// Entry returns the first layer of the plan reached by a traversal
// moving in direction dir: a Core-ward traversal enters at the first
// plan layer (nearest Gravity), a Fabric-ward one at the last plan
// layer (nearest Core). A traversal starting already inside the plan
// uses Next instead.
func (p TraversalPlan) Entry(dir Direction) (Layer, bool) {
	if len(p.Layers) == 0 {
		return 0, false
	}
	if dir == DirectionCore {
		return p.Layers[0], true
	}
	return p.Layers[len(p.Layers)-1], true
}
