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

	"github.com/starlane-io/starlane/api/wave"
)

// SphereKind discriminates the variants of ParticleSphere.
type SphereKind int

const (
	// SphereHandler is a directed request/reply particle: given a
	// DirectedCore, it returns the ReflectedCore to reply with.
	SphereHandler SphereKind = iota
	// SphereRouter is an opaque in-place traversal router, used by
	// routers and proxies such as the driver-driver itself: it receives
	// the whole wave and decides where it goes next.
	SphereRouter
)

// Handler answers a directed wave's core in place, as a request/reply
// particle.
type Handler interface {
	Handle(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error)
}

// Router forwards a wave onward rather than answering it directly.
type Router interface {
	Route(ctx context.Context, w wave.Wave) error
}

// ParticleSphere is the tagged union a Driver returns per particle:
// either a Handler or a Router. DriverRunner.Traverse (traverse and
// handleSphere in runner.go) dispatches both kinds.
type ParticleSphere struct {
	Kind    SphereKind
	Handler Handler
	Router  Router
}

func HandlerSphere(h Handler) ParticleSphere {
	return ParticleSphere{Kind: SphereHandler, Handler: h}
}

func RouterSphere(r Router) ParticleSphere {
	return ParticleSphere{Kind: SphereRouter, Router: r}
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error)

func (f HandlerFunc) Handle(ctx context.Context, core wave.DirectedCore) (wave.ReflectedCore, error) {
	return f(ctx, core)
}

// RouterFunc adapts a function to Router.
type RouterFunc func(ctx context.Context, w wave.Wave) error

func (f RouterFunc) Route(ctx context.Context, w wave.Wave) error {
	return f(ctx, w)
}
