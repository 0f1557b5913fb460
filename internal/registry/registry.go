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

// Package registry defines the external registry contract of spec.md
// §4.6 and an in-memory reference implementation of it. A real
// deployment backs this contract with a durable store; the core only
// ever depends on the Registry interface.
package registry

import (
	"context"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/internal/access"
)

// Registration is what register() consumes: a particle's own address,
// its kind, and the owner to record for subsequent Owner access
// checks.
type Registration struct {
	Point loc.Point
	Kind  loc.Kind
	Owner loc.Point
}

// Stub is a particle's registry identity without its hosting star: the
// element type of select().
type Stub struct {
	Point  loc.Point
	Kind   loc.Kind
	Status string
}

// Selector narrows select() to particles under Root (and, with
// Recursive set, everything beneath it) whose Kind matches KindSel
// when it is set.
type Selector struct {
	Root      loc.Point
	Recursive bool
	KindSel   *loc.KindSelector
}

// Registry is the narrow contract spec.md §4.6 requires the core to
// consume. record and locate return the same loc.Record shape in this
// implementation: a particle's registry record already is "stub plus
// hosting star" here, so there is nothing further for locate to add.
type Registry interface {
	Register(ctx context.Context, reg Registration) error
	AssignStar(ctx context.Context, point loc.Point, star loc.StarKey) error
	SetStatus(ctx context.Context, point loc.Point, status string) error
	Sequence(ctx context.Context, point loc.Point) (uint64, error)
	Record(ctx context.Context, point loc.Point) (loc.Record, error)
	Locate(ctx context.Context, point loc.Point) (loc.Record, error)
	Select(ctx context.Context, sel Selector) ([]Stub, error)

	Access(ctx context.Context, to, on loc.Point) (access.Access, error)
	Grant(ctx context.Context, g access.Grant) error
	ListAccess(ctx context.Context, on loc.Point) ([]access.Grant, error)
	RemoveAccess(ctx context.Context, on loc.Point, byParticle loc.Point) error
	Chown(ctx context.Context, point loc.Point, newOwner loc.Point) error
}
