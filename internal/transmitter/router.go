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

package transmitter

import (
	"context"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Router is the capability set a ProtoTransmitter ships a wave
// through. A transmitter does not know which concrete variant it
// holds: LayerInjectionRouter, TxRouter, or HyperwayRouter all satisfy
// this interface identically from the transmitter's point of view.
type Router interface {
	// Route ships wave w asynchronously; the caller does not block on
	// delivery.
	Route(ctx context.Context, w wave.Wave) error
	// RouteSync ships wave w and blocks until it has been handed off to
	// the next stage (a channel send, a traversal injection, or a
	// hyperway write), without waiting for any reflected reply.
	RouteSync(ctx context.Context, w wave.Wave) error
}

// InjectFunc injects a wave into a star's layer traversal engine at a
// specific surface. internal/traversal supplies the concrete
// implementation; this package only depends on the function shape to
// avoid an import cycle.
type InjectFunc func(ctx context.Context, w wave.Wave, injector loc.Surface) error

// LayerInjectionRouter forwards a wave into a star's layer engine at
// a fixed injector surface — used when a driver or built-in layer
// handler originates traffic.
type LayerInjectionRouter struct {
	Inject   InjectFunc
	Injector loc.Surface
}

func (r LayerInjectionRouter) Route(ctx context.Context, w wave.Wave) error {
	return r.Inject(ctx, w, r.Injector)
}

func (r LayerInjectionRouter) RouteSync(ctx context.Context, w wave.Wave) error {
	return r.Inject(ctx, w, r.Injector)
}

// TxRouter enqueues a wave onto an in-star channel, e.g. a
// DriverRunner's request channel or a star's gravity channel.
type TxRouter struct {
	Tx chan<- wave.Wave
}

func (r TxRouter) Route(ctx context.Context, w wave.Wave) error {
	select {
	case r.Tx <- w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r TxRouter) RouteSync(ctx context.Context, w wave.Wave) error {
	return r.Route(ctx, w)
}

// HyperwaySendFunc ships a wave across an inter-star transport
// connection. internal/star supplies the concrete implementation.
type HyperwaySendFunc func(ctx context.Context, w wave.Wave) error

// HyperwayRouter ships a wave across inter-star transport.
type HyperwayRouter struct {
	Send HyperwaySendFunc
}

func (r HyperwayRouter) Route(ctx context.Context, w wave.Wave) error {
	return r.Send(ctx, w)
}

func (r HyperwayRouter) RouteSync(ctx context.Context, w wave.Wave) error {
	return r.Send(ctx, w)
}
