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

// StarSubDriverFactory builds the always-present driver hosting a
// star's own particle: waves addressed to the star's point itself
// (Kind::Star<sub>) land here rather than being routed onward. The
// only request it answers today is an Ext "status" ping reporting
// the drivers manager's own rolled-up Aggregation.
type StarSubDriverFactory struct {
	Sub loc.StarSub
	// Aggregate is called lazily on every status request rather than
	// captured at construction, since the Manager publishing it is
	// itself still under construction when this factory is built.
	Aggregate func() Aggregation
}

func NewStarSubDriverFactory(sub loc.StarSub, aggregate func() Aggregation) StarSubDriverFactory {
	return StarSubDriverFactory{Sub: sub, Aggregate: aggregate}
}

func (f StarSubDriverFactory) Kind() loc.Kind { return loc.StarKind(f.Sub) }

func (f StarSubDriverFactory) Selector() loc.KindSelector {
	return loc.KindSelector{MatchLabels: map[string]string{
		"category": loc.CategoryStar.String(),
		"sub":      string(f.Sub),
	}}
}

func (f StarSubDriverFactory) Avail() Availability { return AvailInternal }

func (f StarSubDriverFactory) Create(ctx context.Context, star loc.StarKey, skel Skel) (Driver, error) {
	return &starSubDriver{star: star, sub: f.Sub, aggregate: f.Aggregate}, nil
}

type starSubDriver struct {
	star      loc.StarKey
	sub       loc.StarSub
	aggregate func() Aggregation
}

func (d *starSubDriver) Particle(ctx context.Context, point loc.Point) (ParticleSphere, error) {
	return HandlerSphere(HandlerFunc(d.handle)), nil
}

func (d *starSubDriver) InitParticle(ctx context.Context, point loc.Point) error { return nil }

func (d *starSubDriver) Bind(ctx context.Context) (BindConfig, error) {
	return BindConfig{Kind: loc.StarKind(d.sub)}, nil
}

func (d *starSubDriver) handle(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error) {
	if core.Method.Kind != wave.MethodExt || core.Method.Verb != "status" {
		return wave.NotFoundCore(), nil
	}
	var agg Aggregation
	if d.aggregate != nil {
		agg = d.aggregate()
	}
	return wave.OkBodyCore(wave.TextSubstance(agg.Status.String())), nil
}
