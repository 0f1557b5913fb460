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
	"context"
	"sync"
)

// Rippler broadcasts a search ripple to one adjacent and reports back
// every star it (transitively) discovered, one hop further out than
// what that adjacent itself reported. The gateway/transport layer
// supplies the concrete implementation over the physical hyperway.
type Rippler interface {
	Ripple(ctx context.Context, adjacent Adjacent) ([]Discovery, error)
}

// Search implements the star driver's Search operation: broadcast a
// ripple to Recipients::Stars (every adjacent) with
// BounceBacks::Count(#adjacents), collect Discoveries, and feed both
// the StarWrangles table and the golden path cache.
func (s *Star) Search(ctx context.Context) ([]Discovery, error) {
	adjacents := s.skel.Adjacents
	results := make(chan []Discovery, len(adjacents))

	var wg sync.WaitGroup
	for _, adjacent := range adjacents {
		wg.Add(1)
		go func(a Adjacent) {
			defer wg.Done()
			discoveries, err := s.rippler.Ripple(ctx, a)
			if err != nil {
				s.skel.Log.Error(err, "search ripple failed", "adjacent", a.Key.String())
				return
			}
			// One more hop than the adjacent itself is: the adjacent is
			// always a 1-hop discovery; everything it reports is 1 hop
			// further than it reported to us.
			bumped := make([]Discovery, 0, len(discoveries)+1)
			bumped = append(bumped, Discovery{Star: a.Key, Kind: a.Kind, Hops: 1})
			for _, d := range discoveries {
				bumped = append(bumped, Discovery{Star: d.Star, Kind: d.Kind, Hops: d.Hops + 1})
			}
			results <- bumped

			for _, d := range bumped {
				s.skel.Wrangles.Offer(d)
				s.skel.Golden.Offer(d.Star, a.Key, d.Hops)
			}
		}(adjacent)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Discovery
	for batch := range results {
		all = append(all, batch...)
	}
	sortDiscoveries(all)
	return all, nil
}
