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

// Package star implements a single star's runtime: its skeleton, the
// hyperway transport framing, gravity shard/wrap, search and
// wrangling, and the golden path cache.
package star

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/driver"
	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/traversal"
)

// Adjacent is one direct hyperway neighbor of this star.
type Adjacent struct {
	Key     loc.StarKey
	Surface loc.Surface
	Kind    loc.Kind
}

func (a Adjacent) IsForwarder() bool { return a.Kind.IsForwarder() }

// Skel is a star's skeleton: the fixed collaborators every StarCall
// handler needs. Handed to HyperDriverFactory.Create via the narrower
// driver.Skel to avoid an import cycle (internal/driver cannot import
// internal/star).
type Skel struct {
	Key      loc.StarKey
	Point    loc.Point
	Kind     loc.Kind
	Registry traversal.Registry
	Drivers  *driver.Manager
	Exchanger *exchanger.Exchanger
	Engine    *traversal.Engine

	Adjacents []Adjacent
	Wrangles  *Wrangles
	Golden    *GoldenPath

	Log logr.Logger

	// reflect is wired by NewStar once the Star exists, letting
	// DriverSkel hand the driver-driver a reply path despite being
	// built before the Star itself (see SetReflector).
	reflect func(ctx context.Context, r *wave.ReflectedWave) error
}

// SetReflector wires r as the reply path driver.Skel.Reflect uses.
// Called once from NewStar, after the Star this Skel belongs to
// exists, so the closures below read it lazily rather than at
// DriverSkel's own call time.
func (s *Skel) SetReflector(r func(ctx context.Context, rw *wave.ReflectedWave) error) {
	s.reflect = r
}

// DriverSkel narrows this skeleton down to what HyperDriverFactory.Create
// needs, satisfying driver.Skel's function-field shape. Find and Reflect
// close over s rather than its current field values, since both Drivers
// and reflect are still unset the first time a factory's Create runs
// (Init0 creates the driver-driver itself before skel.Drivers exists).
func (s *Skel) DriverSkel() driver.Skel {
	return driver.Skel{
		Locate: s.Registry.Locate,
		Find: func(kind loc.Kind) (*driver.DriverRunner, bool) {
			if s.Drivers == nil {
				return nil, false
			}
			return s.Drivers.Find(kind)
		},
		Reflect: func(ctx context.Context, r *wave.ReflectedWave) error {
			if s.reflect == nil {
				return nil
			}
			return s.reflect(ctx, r)
		},
		Add: func(ctx context.Context, f driver.HyperDriverFactory) error {
			if s.Drivers == nil {
				return fmt.Errorf("drivers: manager not yet initialized")
			}
			return s.Drivers.AddDriver(ctx, f)
		},
	}
}

// GravitySurface is this star's own gravity-layer surface, used as the
// synthetic `from` of locally-originated replies (404s, etc).
func (s *Skel) GravitySurface() loc.Surface {
	return loc.NewSurface(s.Point, loc.LayerGravity)
}
