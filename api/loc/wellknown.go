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

// GlobalExecPoint is the virtual point representing the machine's
// global executor: a to_gravity recipient is retargeted to the
// machine star's global handler rather than resolved through the
// registry.
func GlobalExecPoint() Point {
	return mustWellKnownPoint(GlobalRoute())
}

// MachineStarSurface is the well-known surface of the machine star's
// global handler, the retarget destination for GLOBAL_EXEC waves.
func MachineStarSurface(machine StarKey) Surface {
	return NewSurface(mustWellKnownPoint(StarRoute(machine)), LayerCore)
}

func mustWellKnownPoint(route Route) Point {
	p, err := NewPoint(route, []PointSeg{RootSeg(), BaseSeg("global-exec")})
	if err != nil {
		panic(fmt.Sprintf("loc: malformed well-known point: %v", err))
	}
	return p
}

// StarPoint is the canonical address point of a star itself: a bare
// root under that star's route, used to address the star as a whole
// (rather than a particle it hosts) in inter-star hop/transport
// framing.
func StarPoint(key StarKey) Point {
	p, err := NewPoint(StarRoute(key), []PointSeg{RootSeg()})
	if err != nil {
		panic(fmt.Sprintf("loc: malformed star point: %v", err))
	}
	return p
}

// HyperUserPoint is the well-known superuser point: access() always
// answers Super for this point, regardless of any grant (spec §4.6).
func HyperUserPoint() Point {
	p, err := NewPoint(GlobalRoute(), []PointSeg{RootSeg(), BaseSeg("hyperuser")})
	if err != nil {
		panic(fmt.Sprintf("loc: malformed hyperuser point: %v", err))
	}
	return p
}
