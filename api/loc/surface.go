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

import "fmt"

// Topic names a sub-channel within a layer that a TopicHandler can
// register against, scoped to the wave's declared source pattern.
type Topic struct {
	name string
	any  bool
}

// NoTopic is the zero value: no topic registered on a Surface.
var NoTopic = Topic{}

// NamedTopic constructs a topic with an explicit name.
func NamedTopic(name string) Topic { return Topic{name: name} }

// AnyTopic matches any topic a Surface carries; used when registering
// a TopicHandler that should receive every topic at a given layer.
var AnyTopic = Topic{any: true}

func (t Topic) IsNone() bool { return !t.any && t.name == "" }
func (t Topic) IsAny() bool  { return t.any }
func (t Topic) Name() string { return t.name }

func (t Topic) String() string {
	switch {
	case t.any:
		return "*"
	case t.IsNone():
		return ""
	default:
		return t.name
	}
}

func (t Topic) Equal(o Topic) bool {
	return t.any == o.any && t.name == o.name
}

// Matches reports whether a registered topic key t (possibly AnyTopic)
// matches a wave's carried topic w.
func (t Topic) Matches(w Topic) bool {
	if t.any {
		return true
	}
	return t.Equal(w)
}

// Surface is the fully addressable endpoint of a wave: a Point at a
// specific Layer, optionally narrowed to a Topic.
type Surface struct {
	Point Point
	Layer Layer
	Topic Topic
}

func NewSurface(point Point, layer Layer) Surface {
	return Surface{Point: point, Layer: layer}
}

func (s Surface) WithTopic(t Topic) Surface {
	s.Topic = t
	return s
}

func (s Surface) String() string {
	if s.Topic.IsNone() {
		return fmt.Sprintf("%s@%s", s.Point.String(), s.Layer.String())
	}
	return fmt.Sprintf("%s@%s#%s", s.Point.String(), s.Layer.String(), s.Topic.String())
}

func (s Surface) Equal(o Surface) bool {
	return s.Point.Equal(o.Point) && s.Layer == o.Layer && s.Topic.Equal(o.Topic)
}

// SourcePattern is a predicate over a sender Surface, used to gate
// TopicHandler registrations (spec §4.3 topic dispatch).
type SourcePattern struct {
	// PointPrefix, when non-empty, requires the source point's string
	// form to start with this prefix. Empty means "any source".
	PointPrefix string
}

// AnySource matches every sender.
var AnySource = SourcePattern{}

func (p SourcePattern) Matches(source Surface) bool {
	if p.PointPrefix == "" {
		return true
	}
	sp := source.Point.String()
	if len(sp) < len(p.PointPrefix) {
		return false
	}
	return sp[:len(p.PointPrefix)] == p.PointPrefix
}
