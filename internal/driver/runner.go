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
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/client-go/util/workqueue"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/starerr"
	"github.com/starlane-io/starlane/internal/traversal"
)

// requestKind discriminates a DriverRunner's serialized call types.
type requestKind int

const (
	reqOnAdded requestKind = iota
	reqTraverse
	reqHandle
	reqParticle
	reqInitParticle
	reqParticleBind
	reqDriverBind
	reqAddDriver
)

// request is one call serialized onto a DriverRunner's request queue.
// Exactly the fields relevant to Kind are populated; done is closed
// when the call completes, with result/err set beforehand.
type request struct {
	kind  requestKind
	point loc.Point
	api   HyperDriverFactory
	trav  *traversal.Traversal

	done   chan struct{}
	sphere ParticleSphere
	bind   BindConfig
	cont   bool
	err    error
}

// DriverRunner serializes all calls to a Driver behind a bounded,
// backpressured request queue, so a single Driver implementation never
// needs its own internal locking.
type DriverRunner struct {
	driver Driver
	log    logr.Logger
	queue  workqueue.TypedRateLimitingInterface[*request]

	mu     sync.RWMutex
	status Status

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewDriverRunner(d Driver, log logr.Logger) *DriverRunner {
	r := &DriverRunner{
		driver: d,
		log:    log,
		queue: workqueue.NewTypedRateLimitingQueue[*request](
			workqueue.DefaultTypedControllerRateLimiter[*request](),
		),
		status: PendingStatus(),
		stopCh: make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *DriverRunner) loop() {
	for {
		req, shutdown := r.queue.Get()
		if shutdown {
			return
		}
		r.process(req)
		r.queue.Done(req)
	}
}

func (r *DriverRunner) process(req *request) {
	defer close(req.done)

	if r.driver == nil {
		req.err = starerr.Fatal(fmt.Sprintf("driver unavailable: %s", r.Status()))
		return
	}

	switch req.kind {
	case reqOnAdded:
		r.setStatus(ReadyStatus())
	case reqParticle:
		sphere, err := r.driver.Particle(context.Background(), req.point)
		req.sphere, req.err = sphere, err
	case reqInitParticle:
		req.err = r.driver.InitParticle(context.Background(), req.point)
	case reqDriverBind:
		bind, err := r.driver.Bind(context.Background())
		req.bind, req.err = bind, err
	case reqParticleBind:
		// Bind config resolution for a hosted particle delegates to the
		// driver's own Bind until per-particle bind overrides are
		// needed; no driver in this runtime differentiates today.
		bind, err := r.driver.Bind(context.Background())
		req.bind, req.err = bind, err
	case reqTraverse:
		req.cont, req.err = r.traverse(req.trav)
	case reqHandle:
		req.err = r.handle(req.trav)
	case reqAddDriver:
		adder, ok := r.driver.(DriverAdder)
		if !ok {
			req.err = starerr.BadRequest(fmt.Sprintf("driver does not host nested drivers: %s", req.api.Kind().String()))
			return
		}
		req.err = adder.AddDriver(context.Background(), req.api)
	}
}

// traverse resolves trav's owning ParticleSphere and dispatches the
// wave to it: a Router sphere is handed the wave unchanged and the
// traversal should continue to its next layer once it returns (cont
// true); a Handler sphere answers in place via handle and the
// traversal ends here (cont false).
func (r *DriverRunner) traverse(trav *traversal.Traversal) (bool, error) {
	sphere, err := r.driver.Particle(context.Background(), trav.Record.Point)
	if err != nil {
		return false, err
	}

	switch sphere.Kind {
	case SphereRouter:
		if err := sphere.Router.Route(context.Background(), trav.Payload); err != nil {
			return false, err
		}
		return true, nil
	case SphereHandler:
		return false, r.handleSphere(trav, sphere)
	default:
		return false, nil
	}
}

// handle is the directed-handler path named standalone by a caller
// that has already determined trav's sphere is a Handler (the
// driver-driver's own dispatch, for instance).
func (r *DriverRunner) handle(trav *traversal.Traversal) error {
	sphere, err := r.driver.Particle(context.Background(), trav.Record.Point)
	if err != nil {
		return err
	}
	return r.handleSphere(trav, sphere)
}

func (r *DriverRunner) handleSphere(trav *traversal.Traversal, sphere ParticleSphere) error {
	directed, isDirected := trav.Payload.(*wave.DirectedWave)
	if !isDirected {
		return nil
	}
	core, err := sphere.Handler.Handle(context.Background(), directed.Core)
	if err != nil {
		return err
	}
	if trav.Reflect == nil {
		return nil
	}
	return trav.Reflect(context.Background(), directed.Reflect(core, trav.To))
}

func (r *DriverRunner) submit(ctx context.Context, req *request) error {
	req.done = make(chan struct{})
	r.queue.Add(req)
	select {
	case <-req.done:
		return req.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnAdded notifies the runner its driver has been added to the
// manager and should transition toward Ready.
func (r *DriverRunner) OnAdded(ctx context.Context) error {
	return r.submit(ctx, &request{kind: reqOnAdded})
}

// Particle fetches the ParticleSphere for point, serialized behind the
// request queue.
func (r *DriverRunner) Particle(ctx context.Context, point loc.Point) (ParticleSphere, error) {
	req := &request{kind: reqParticle, point: point}
	err := r.submit(ctx, req)
	return req.sphere, err
}

// InitParticle creates point's in-memory driver-side state.
func (r *DriverRunner) InitParticle(ctx context.Context, point loc.Point) error {
	return r.submit(ctx, &request{kind: reqInitParticle, point: point})
}

// DriverBind returns the driver's own bind config.
func (r *DriverRunner) DriverBind(ctx context.Context) (BindConfig, error) {
	req := &request{kind: reqDriverBind}
	err := r.submit(ctx, req)
	return req.bind, err
}

// ParticleBind resolves the bind config for a hosted particle.
func (r *DriverRunner) ParticleBind(ctx context.Context, point loc.Point) (BindConfig, error) {
	req := &request{kind: reqParticleBind, point: point}
	err := r.submit(ctx, req)
	return req.bind, err
}

// Traverse dispatches a terminal traversal to this runner's driver,
// serialized behind the same request queue as every other call. The
// returned bool reports whether the caller should step trav onward to
// its next layer and resume (true: the sphere was a Router, a
// pass-through layer) or whether the traversal has ended here (false:
// a Handler answered, or an error occurred).
func (r *DriverRunner) Traverse(ctx context.Context, trav *traversal.Traversal) (bool, error) {
	req := &request{kind: reqTraverse, trav: trav}
	err := r.submit(ctx, req)
	return req.cont, err
}

// Handle runs the directed-handler path for trav against this
// runner's driver: resolve its ParticleSphere and, if a Handler,
// answer in place. Used by callers that dispatch Handler and Router
// spheres differently further up (the driver-driver, see meta.go).
func (r *DriverRunner) Handle(ctx context.Context, trav *traversal.Traversal) error {
	return r.submit(ctx, &request{kind: reqHandle, trav: trav})
}

// AddDriver installs a nested driver hosted by this runner's own
// driver, if it implements DriverAdder (only the driver-driver does).
// Serialized like every other call so installation never races a
// concurrent Particle/Traverse dispatch.
func (r *DriverRunner) AddDriver(ctx context.Context, f HyperDriverFactory) error {
	return r.submit(ctx, &request{kind: reqAddDriver, api: f})
}

func (r *DriverRunner) setStatus(s Status) {
	r.mu.Lock()
	r.status = s
	r.mu.Unlock()
}

func (r *DriverRunner) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Fatal marks the runner's driver as fatally failed, e.g. after
// Create returned an error (S5: driver init failure).
func (r *DriverRunner) Fatal(message string) {
	r.setStatus(FatalStatus(message))
}

// Retrying marks the runner's driver as transiently retrying.
func (r *DriverRunner) Retrying(message string) {
	r.setStatus(RetryingStatus(message))
}

// Stop shuts down the runner's request queue. Requests already queued
// are still handed to the loop and processed; requests submitted after
// Stop are ignored by the queue, so their callers wait until their
// context ends.
func (r *DriverRunner) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.queue.ShutDown()
	})
}
