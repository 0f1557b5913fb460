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
)

// Point is Starlane's hierarchical, immutable address: a Route plus an
// ordered list of PointSeg. Points compare with Equal; because Segs is
// a slice, a Point is not comparable with == and cannot be a map key.
type Point struct {
	Route Route
	Segs  []PointSeg
}

// NewPoint validates and constructs a Point from a route and segment
// list, checking the push rules of §3 incrementally.
func NewPoint(route Route, segs []PointSeg) (Point, error) {
	built := make([]PointSeg, 0, len(segs))
	for _, s := range segs {
		if err := validPush(built, s); err != nil {
			return Point{}, err
		}
		built = append(built, s)
	}
	return Point{Route: route, Segs: built}, nil
}

// Push appends a single segment, applying the same validation NewPoint
// performs incrementally, and returns the extended Point.
func (p Point) Push(seg PointSeg) (Point, error) {
	if err := validPush(p.Segs, seg); err != nil {
		return Point{}, err
	}
	next := make([]PointSeg, len(p.Segs)+1)
	copy(next, p.Segs)
	next[len(p.Segs)] = seg
	return Point{Route: p.Route, Segs: next}, nil
}

// Parent drops the last segment. Parent of the root point (a point
// whose only segment is the root itself) is an error.
func (p Point) Parent() (Point, error) {
	if len(p.Segs) <= 1 {
		return Point{}, fmt.Errorf("loc: point %q has no parent", p.String())
	}
	return Point{Route: p.Route, Segs: p.Segs[:len(p.Segs)-1]}, nil
}

// Last returns the final segment, if any.
func (p Point) Last() (PointSeg, bool) {
	if len(p.Segs) == 0 {
		return PointSeg{}, false
	}
	return p.Segs[len(p.Segs)-1], true
}

// Equal compares two points field-wise.
func (p Point) Equal(o Point) bool {
	if !p.Route.Equal(o.Route) || len(p.Segs) != len(o.Segs) {
		return false
	}
	for i := range p.Segs {
		if !p.Segs[i].Equal(o.Segs[i]) {
			return false
		}
	}
	return true
}

// String renders a point as route::space:base[:base…][:version][:/file-root][/dir/][file].
func (p Point) String() string {
	var b strings.Builder
	b.WriteString(p.Route.String())
	b.WriteString("::")

	prevWasSpaceOrBase := false
	for i, s := range p.Segs {
		switch s.Kind {
		case SegRoot:
			// nothing to render
		case SegSpace:
			b.WriteString(s.Value)
			prevWasSpaceOrBase = true
		case SegBase, SegVersion:
			if prevWasSpaceOrBase || i > 0 {
				b.WriteString(":")
			}
			b.WriteString(s.Value)
			prevWasSpaceOrBase = true
		case SegFsRoot:
			b.WriteString(":/")
			prevWasSpaceOrBase = false
		case SegDir:
			b.WriteString(s.Value)
			b.WriteString("/")
		case SegFile:
			b.WriteString(s.Value)
		}
	}
	return b.String()
}

// ParsePoint parses the full point syntax of spec.md §6:
// route::space:base[:base…][:version][:/file-root][/dir/][file].
func ParsePoint(s string) (Point, error) {
	routeStr, rest, ok := strings.Cut(s, "::")
	if !ok {
		rest = s
		routeStr = "LOCAL"
	}
	route, err := ParseRoute(routeStr)
	if err != nil {
		return Point{}, fmt.Errorf("loc: parsing point %q: %w", s, err)
	}

	segs := []PointSeg{RootSeg()}
	if rest == "" {
		return Point{Route: route, Segs: segs}, nil
	}

	fsPart := ""
	hierPart := rest
	if idx := strings.Index(rest, ":/"); idx >= 0 {
		hierPart = rest[:idx]
		fsPart = rest[idx+2:]
	}

	if hierPart != "" {
		for i, tok := range strings.Split(hierPart, ":") {
			if tok == "" {
				continue
			}
			var seg PointSeg
			if i == 0 {
				seg = SpaceSeg(tok)
			} else {
				seg = BaseSeg(tok)
			}
			if err := validPush(segs, seg); err != nil {
				return Point{}, fmt.Errorf("loc: parsing point %q: %w", s, err)
			}
			segs = append(segs, seg)
		}
	}

	if fsPart != "" || strings.Contains(rest, ":/") {
		fsRoot := FsRootSeg()
		if err := validPush(segs, fsRoot); err != nil {
			return Point{}, fmt.Errorf("loc: parsing point %q: %w", s, err)
		}
		segs = append(segs, fsRoot)

		dirs := strings.Split(fsPart, "/")
		for i, d := range dirs {
			if d == "" {
				continue
			}
			isLast := i == len(dirs)-1
			var seg PointSeg
			if isLast {
				seg = FileSeg(d)
			} else {
				seg = DirSeg(d)
			}
			if err := validPush(segs, seg); err != nil {
				return Point{}, fmt.Errorf("loc: parsing point %q: %w", s, err)
			}
			segs = append(segs, seg)
		}
	}

	return Point{Route: route, Segs: segs}, nil
}
