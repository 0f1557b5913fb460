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

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Machine is the star's hosting machine, needed only to retarget
// GLOBAL_EXEC waves to the machine star's global handler.
type Machine struct {
	Star loc.StarKey
}

// ToGravity implements spec §4.5's to_gravity(outbound): a wave
// leaving a particle toward the fabric, one at a time off
// gravity_tx. GLOBAL_EXEC is retargeted to the machine star; every
// other destination is located and wrapped into a transport bound for
// its hosting star.
func (s *Star) ToGravity(ctx context.Context, w *wave.DirectedWave, machine Machine) error {
	target := w
	if w.To.Point.Equal(loc.GlobalExecPoint()) {
		retargeted := *w
		retargeted.To = loc.MachineStarSurface(machine.Star)
		target = &retargeted
	}

	record, err := s.skel.Registry.Locate(ctx, target.To.Point)
	if err != nil {
		return err
	}

	transport := wrapTransport(target, loc.NewSurface(loc.StarPoint(record.Star), loc.LayerCore))
	return s.hyperway.ToHyperway(ctx, transport)
}
