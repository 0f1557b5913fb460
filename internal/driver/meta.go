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
	"fmt"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// MetaDriverFactory builds the driver-driver: the always-present
// Kind::Driver factory every DriversBuilder is prepended with, whose
// particles are themselves drivers. A wave addressed to one of those
// particle points resolves, through this driver, to the referenced
// driver's own runner, wrapped as a Router so the star's dispatch
// loop needs no special case for driver-addressed waves.
type MetaDriverFactory struct{}

func NewMetaDriverFactory() MetaDriverFactory { return MetaDriverFactory{} }

func (MetaDriverFactory) Kind() loc.Kind { return loc.DriverKind() }

// Selector matches any particle of category Driver: every driver's
// own particle point, regardless of which KindSelector that driver
// itself declares for the kinds it hosts.
func (MetaDriverFactory) Selector() loc.KindSelector {
	return loc.KindSelector{MatchLabels: map[string]string{
		"category": loc.CategoryDriver.String(),
	}}
}

func (MetaDriverFactory) Avail() Availability { return AvailInternal }

func (MetaDriverFactory) Create(ctx context.Context, star loc.StarKey, skel Skel) (Driver, error) {
	return &metaDriver{star: star, skel: skel}, nil
}

// metaDriver owns no particle state of its own; it only resolves a
// driver point to its owning runner and forwards.
type metaDriver struct {
	star loc.StarKey
	skel Skel
}

func (d *metaDriver) Particle(ctx context.Context, point loc.Point) (ParticleSphere, error) {
	return RouterSphere(RouterFunc(func(ctx context.Context, w wave.Wave) error {
		return d.route(ctx, point, w)
	})), nil
}

func (d *metaDriver) InitParticle(ctx context.Context, point loc.Point) error { return nil }

func (d *metaDriver) Bind(ctx context.Context) (BindConfig, error) {
	return BindConfig{Kind: loc.DriverKind()}, nil
}

// AddDriver installs f with the star's Manager, satisfying DriverAdder:
// the driver-driver is the only driver allowed to admit new drivers
// after boot.
func (d *metaDriver) AddDriver(ctx context.Context, f HyperDriverFactory) error {
	if d.skel.Add == nil {
		return fmt.Errorf("drivers: driver-driver has no skel wiring to add %s", f.Kind().String())
	}
	return d.skel.Add(ctx, f)
}

// route resolves the driver owning point's Kind and forwards w into
// its runner. A Router-kind owner is handed the wave unchanged, same
// as the star's own terminal dispatch; a Handler-kind owner is called
// in place and its reply delivered via skel.Reflect, since Route
// carries no reflect callback of its own.
func (d *metaDriver) route(ctx context.Context, point loc.Point, w wave.Wave) error {
	if d.skel.Locate == nil || d.skel.Find == nil {
		return fmt.Errorf("drivers: driver-driver has no skel wiring for %s", point.String())
	}

	record, err := d.skel.Locate(ctx, point)
	if err != nil {
		return err
	}

	runner, ok := d.skel.Find(record.Kind)
	if !ok {
		return fmt.Errorf("drivers: no driver registered for kind %s", record.Kind.String())
	}

	sphere, err := runner.Particle(ctx, point)
	if err != nil {
		return err
	}

	switch sphere.Kind {
	case SphereRouter:
		return sphere.Router.Route(ctx, w)
	case SphereHandler:
		return d.replyHandler(ctx, point, sphere, w)
	default:
		return nil
	}
}

func (d *metaDriver) replyHandler(ctx context.Context, point loc.Point, sphere ParticleSphere, w wave.Wave) error {
	directed, isDirected := w.(*wave.DirectedWave)
	if !isDirected {
		return nil
	}
	core, err := sphere.Handler.Handle(ctx, directed.Core)
	if err != nil {
		return err
	}
	if d.skel.Reflect == nil {
		return nil
	}
	replyFrom := loc.NewSurface(point, loc.LayerCore)
	return d.skel.Reflect(ctx, directed.Reflect(core, replyFrom))
}
