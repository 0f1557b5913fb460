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

// Record is a particle's registry stub: its Point, its Kind, and the
// StarKey of the star currently hosting it. Traversal resolves a
// Record's Kind to a TraversalPlan before visiting any layer; the
// registry's contract guarantees a directed wave's recipient Record
// is locatable before traversal begins, or the wave fails NotFound.
type Record struct {
	Point Point
	Kind  Kind
	Star  StarKey
}

func (r Record) Equal(o Record) bool {
	return r.Point.Equal(o.Point) && r.Kind.Equal(o.Kind) && r.Star.Equal(o.Star)
}
