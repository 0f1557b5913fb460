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
	"sort"
	"sync"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/internal/starerr"
)

// Discovery is one star found by a ripple Search, with its hop count
// from the searching star.
type Discovery struct {
	Star loc.StarKey
	Kind loc.Kind
	Hops int
}

// roundRobinWrangleSelector cycles through the discoveries sharing the
// minimum observed hop count for one StarSub, handing out successive
// star keys on each call. Stars farther away are only considered if no
// closer one was ever discovered.
type roundRobinWrangleSelector struct {
	mu         sync.Mutex
	candidates []Discovery // all sharing the minimum hop count seen
	minHops    int
	cursor     int
}

func newRoundRobinWrangleSelector() *roundRobinWrangleSelector {
	return &roundRobinWrangleSelector{minHops: -1}
}

func (s *roundRobinWrangleSelector) offer(d Discovery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.minHops < 0 || d.Hops < s.minHops:
		s.minHops = d.Hops
		s.candidates = []Discovery{d}
		s.cursor = 0
	case d.Hops == s.minHops:
		for _, c := range s.candidates {
			if c.Star.Equal(d.Star) {
				return
			}
		}
		s.candidates = append(s.candidates, d)
	}
}

func (s *roundRobinWrangleSelector) next() (loc.StarKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.candidates) == 0 {
		return loc.StarKey{}, false
	}
	d := s.candidates[s.cursor%len(s.candidates)]
	s.cursor++
	return d.Star, true
}

// Wrangles is a star's StarWrangles table: one round-robin selector
// per discovered StarSub, populated by Search results.
type Wrangles struct {
	mu        sync.RWMutex
	selectors map[loc.StarSub]*roundRobinWrangleSelector
}

func NewWrangles() *Wrangles {
	return &Wrangles{selectors: map[loc.StarSub]*roundRobinWrangleSelector{}}
}

// Offer records one Search discovery against its StarSub's selector.
func (w *Wrangles) Offer(d Discovery) {
	w.mu.Lock()
	sel, ok := w.selectors[d.Kind.StarSub]
	if !ok {
		sel = newRoundRobinWrangleSelector()
		w.selectors[d.Kind.StarSub] = sel
	}
	w.mu.Unlock()
	sel.offer(d)
}

// Wrangle returns the next star key to use for sub, round-robin among
// those at the minimum observed hop count.
func (w *Wrangles) Wrangle(sub loc.StarSub) (loc.StarKey, error) {
	w.mu.RLock()
	sel, ok := w.selectors[sub]
	w.mu.RUnlock()
	if !ok {
		return loc.StarKey{}, starerr.NotFound("wrangle: no discoveries for star sub " + string(sub))
	}
	key, ok := sel.next()
	if !ok {
		return loc.StarKey{}, starerr.NotFound("wrangle: no discoveries for star sub " + string(sub))
	}
	return key, nil
}

// GoldenPath caches, for each known remote star, the adjacent used as
// the next hop toward it, populated from Search results ordered by
// (hops, star key) ascending.
type GoldenPath struct {
	mu   sync.RWMutex
	next map[string]loc.StarKey // destination star -> next-hop adjacent
	hops map[string]int
}

func NewGoldenPath() *GoldenPath {
	return &GoldenPath{next: map[string]loc.StarKey{}, hops: map[string]int{}}
}

// Offer records one Search discovery reached via adjacent nextHop,
// keeping the lowest-hop-count path found so far; ties are broken by
// adjacent star key string order for determinism.
func (g *GoldenPath) Offer(dest loc.StarKey, nextHop loc.StarKey, hops int) {
	key := dest.String()

	g.mu.Lock()
	defer g.mu.Unlock()

	existingHops, ok := g.hops[key]
	if !ok || hops < existingHops {
		g.hops[key] = hops
		g.next[key] = nextHop
		return
	}
	if hops == existingHops {
		if nextHop.String() < g.next[key].String() {
			g.next[key] = nextHop
		}
	}
}

// FindNextHop returns the adjacent to send toward dest, if known.
func (g *GoldenPath) FindNextHop(dest loc.StarKey) (loc.StarKey, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	key, ok := g.next[dest.String()]
	return key, ok
}

// sortDiscoveries orders discoveries by (hops, star key) ascending, as
// spec §4.5 requires for golden path population.
func sortDiscoveries(discoveries []Discovery) {
	sort.Slice(discoveries, func(i, j int) bool {
		if discoveries[i].Hops != discoveries[j].Hops {
			return discoveries[i].Hops < discoveries[j].Hops
		}
		return discoveries[i].Star.String() < discoveries[j].Star.String()
	})
}
