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

package driver

import (
	"context"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Availability controls whether a driver's KindSelector is exposed to
// remote clients. Only External selectors are.
type Availability int

const (
	AvailInternal Availability = iota
	AvailExternal
)

// Driver is the behavior a factory produces: a ParticleSphere per
// owned particle, plus lifecycle hooks the DriverRunner calls.
type Driver interface {
	// Particle returns the ParticleSphere hosting the particle at
	// point, creating it lazily on first traversal if needed.
	Particle(ctx context.Context, point loc.Point) (ParticleSphere, error)
	// InitParticle creates a particle's in-memory driver-side state.
	InitParticle(ctx context.Context, point loc.Point) error
	// Bind returns the driver's own bind config (its Cmd/Ext surface
	// description), fetched by get_bind(kind).
	Bind(ctx context.Context) (BindConfig, error)
}

// DriverAdder is implemented by a Driver that can host additional
// drivers as particles of its own — only the driver-driver (meta.go)
// does. AddDriver installs f dynamically, after boot, through the
// owning DriverRunner's request queue (see DriverRunner.AddDriver).
type DriverAdder interface {
	AddDriver(ctx context.Context, f HyperDriverFactory) error
}

// BindConfig is the subset of artifact-fetched bind configuration this
// runtime consumes: get_bind(kind) → BindConfig is the only artifact
// operation in scope.
type BindConfig struct {
	Kind loc.Kind
	Raw  []byte
}

// HyperDriverFactory builds one Driver per declared KindSelector. Two
// factories are always prepended to a DriversBuilder: one for
// Kind::Driver (the meta-driver hosting drivers themselves) and one
// for the star's own StarSub kind.
type HyperDriverFactory interface {
	Kind() loc.Kind
	Selector() loc.KindSelector
	Avail() Availability
	Create(ctx context.Context, star loc.StarKey, skel Skel) (Driver, error)
}

// Skel is the subset of a star's skeleton a driver factory needs to
// construct its Driver: enough to reach the registry and traversal
// engine without importing internal/star (which in turn depends on
// this package), avoiding an import cycle.
type Skel struct {
	Locate func(ctx context.Context, point loc.Point) (loc.Record, error)

	// Find resolves the DriverRunner owning a Kind, used by the
	// driver-driver to forward a wave addressed to one of its hosted
	// particles into that driver's own runner.
	Find func(kind loc.Kind) (*DriverRunner, bool)

	// Reflect delivers a reply leaving a Router-kind ParticleSphere
	// back toward its origin. The driver-driver needs it to answer on
	// behalf of a wrapped Handler-kind driver, since Router.Route
	// carries no reflect callback of its own.
	Reflect func(ctx context.Context, r *wave.ReflectedWave) error

	// Add installs a new HyperDriverFactory with the star's Manager,
	// letting the driver-driver admit a driver after boot rather than
	// only through Init0/Init1.
	Add func(ctx context.Context, f HyperDriverFactory) error
}

// DriversBuilder accumulates an ordered list of HyperDriverFactory
// before a star's Manager is started.
type DriversBuilder struct {
	factories []HyperDriverFactory
}

func NewDriversBuilder() *DriversBuilder {
	return &DriversBuilder{}
}

func (b *DriversBuilder) Add(f HyperDriverFactory) *DriversBuilder {
	b.factories = append(b.factories, f)
	return b
}

func (b *DriversBuilder) Factories() []HyperDriverFactory {
	out := make([]HyperDriverFactory, len(b.factories))
	copy(out, b.factories)
	return out
}
