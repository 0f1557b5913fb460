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

package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/internal/access"
	"github.com/starlane-io/starlane/internal/starerr"
)

type entry struct {
	rec      loc.Record
	status   string
	seq      uint64
	owner    loc.Point
	hasOwner bool
}

// MemRegistry is an in-memory reference implementation of Registry,
// serializing every operation behind a single mutex the way spec §5
// assumes the registry serializes per point (here, simply per call).
// It exists for tests and single-process deployments; a durable
// backing store implements the same interface.
type MemRegistry struct {
	mu        sync.RWMutex
	log       logr.Logger
	entries   map[string]*entry
	grants    []access.Grant
	hyperuser loc.Point
}

func NewMemRegistry(log logr.Logger) *MemRegistry {
	return &MemRegistry{
		log:       log,
		entries:   map[string]*entry{},
		hyperuser: loc.HyperUserPoint(),
	}
}

func (m *MemRegistry) Register(ctx context.Context, reg Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := reg.Point.String()
	if _, exists := m.entries[key]; exists {
		return starerr.BadRequest(fmt.Sprintf("register: duplicate point %s", key))
	}
	m.entries[key] = &entry{
		rec:      loc.Record{Point: reg.Point, Kind: reg.Kind},
		owner:    reg.Owner,
		hasOwner: true,
	}
	m.log.Info("registered particle", "point", key, "kind", reg.Kind.String())
	return nil
}

func (m *MemRegistry) AssignStar(ctx context.Context, point loc.Point, star loc.StarKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[point.String()]
	if !ok {
		return starerr.NotFound(fmt.Sprintf("assign_star: %s", point.String()))
	}
	e.rec.Star = star
	return nil
}

func (m *MemRegistry) SetStatus(ctx context.Context, point loc.Point, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[point.String()]
	if !ok {
		return starerr.NotFound(fmt.Sprintf("set_status: %s", point.String()))
	}
	e.status = status
	return nil
}

// Sequence returns a monotone counter per point, incrementing on every
// call: spec §4.6's sequence(point) → u64.
func (m *MemRegistry) Sequence(ctx context.Context, point loc.Point) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[point.String()]
	if !ok {
		return 0, starerr.NotFound(fmt.Sprintf("sequence: %s", point.String()))
	}
	e.seq++
	return e.seq, nil
}

func (m *MemRegistry) Record(ctx context.Context, point loc.Point) (loc.Record, error) {
	return m.locate(point)
}

func (m *MemRegistry) Locate(ctx context.Context, point loc.Point) (loc.Record, error) {
	return m.locate(point)
}

func (m *MemRegistry) locate(point loc.Point) (loc.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[point.String()]
	if !ok {
		return loc.Record{}, starerr.NotFound(fmt.Sprintf("locate: %s", point.String()))
	}
	return e.rec, nil
}

func (m *MemRegistry) Select(ctx context.Context, sel Selector) ([]Stub, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stubs []Stub
	for _, e := range m.entries {
		if !underRoot(e.rec.Point, sel.Root, sel.Recursive) {
			continue
		}
		if sel.KindSel != nil && !sel.KindSel.Matches(e.rec.Kind) {
			continue
		}
		stubs = append(stubs, Stub{Point: e.rec.Point, Kind: e.rec.Kind, Status: e.status})
	}
	sort.Slice(stubs, func(i, j int) bool { return stubs[i].Point.String() < stubs[j].Point.String() })
	return stubs, nil
}

func underRoot(p, root loc.Point, recursive bool) bool {
	if len(root.Segs) == 0 {
		return true
	}
	pattern := access.Exact(root)
	if recursive {
		pattern = access.Subtree(root)
	}
	return pattern.Matches(p)
}

func (m *MemRegistry) Access(ctx context.Context, to, on loc.Point) (access.Access, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner := func(p loc.Point) (loc.Point, bool) {
		e, ok := m.entries[p.String()]
		if !ok || !e.hasOwner {
			return loc.Point{}, false
		}
		return e.owner, true
	}
	return access.Evaluate(to, on, m.grants, owner, m.hyperuser), nil
}

func (m *MemRegistry) Grant(ctx context.Context, g access.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants = append(m.grants, g)
	return nil
}

func (m *MemRegistry) ListAccess(ctx context.Context, on loc.Point) ([]access.Grant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found []access.Grant
	for _, g := range m.grants {
		if g.OnPoint.Matches(on) {
			found = append(found, g)
		}
	}
	return found, nil
}

func (m *MemRegistry) RemoveAccess(ctx context.Context, on loc.Point, byParticle loc.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.grants[:0]
	for _, g := range m.grants {
		if g.OnPoint.Matches(on) && g.ByParticle.Equal(byParticle) {
			continue
		}
		kept = append(kept, g)
	}
	m.grants = kept
	return nil
}

func (m *MemRegistry) Chown(ctx context.Context, point loc.Point, newOwner loc.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[point.String()]
	if !ok {
		return starerr.NotFound(fmt.Sprintf("chown: %s", point.String()))
	}
	e.owner = newOwner
	e.hasOwner = true
	return nil
}
