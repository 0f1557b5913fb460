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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"github.com/starlane-io/starlane/api/loc"
)

// entry is one running driver: its factory, its serialized runner, and
// the selector key it was registered under.
type entry struct {
	factory HyperDriverFactory
	runner  *DriverRunner
	key     string
}

// Manager owns every driver hosted by a star, split into an internal
// list (always resolved first, never exposed to remote selection) and
// an external list (the star's published driver surface). Find prefers
// internal over external so a star's own meta-drivers can never be
// shadowed by an operator-declared external one.
type Manager struct {
	star loc.StarKey
	skel Skel
	log  logr.Logger

	retryPolicy RetryPolicy

	mu       sync.RWMutex
	internal []*entry
	external []*entry
}

func NewManager(star loc.StarKey, skel Skel, log logr.Logger) *Manager {
	return &Manager{
		star:        star,
		skel:        skel,
		log:         log,
		retryPolicy: DefaultRetryPolicy,
	}
}

func (m *Manager) WithRetryPolicy(p RetryPolicy) *Manager {
	m.retryPolicy = p
	return m
}

func selectorKey(f HyperDriverFactory) string {
	return fmt.Sprintf("%s/%s", f.Kind().String(), f.Selector().VersionConstraint)
}

// Init0 creates the driver-driver: the meta-driver whose particles are
// the other drivers. It runs before Init1. It only creates and stores
// the driver-driver's runner; it registers nothing in the registry and
// installs no status watcher (status is read on demand via Aggregate).
func (m *Manager) Init0(ctx context.Context, builder *DriversBuilder) error {
	factories := builder.Factories()
	for _, f := range factories {
		if f.Kind().Equal(loc.DriverKind()) {
			return m.add(ctx, f)
		}
	}
	return fmt.Errorf("drivers: no driver-driver factory supplied to Init0")
}

// Init1 creates every remaining declared factory in order, wrapping
// each in a DriverRunner added to the manager's internal or external
// list per its Availability. A factory that fails is still stored with
// a Fatal runner and the remaining factories are still created; the
// failures are returned joined. No driver particle is registered in
// the registry.
func (m *Manager) Init1(ctx context.Context, builder *DriversBuilder) error {
	var errs []error
	for _, f := range builder.Factories() {
		if f.Kind().Equal(loc.DriverKind()) {
			continue // handled by Init0
		}
		if err := m.add(ctx, f); err != nil {
			errs = append(errs, fmt.Errorf("drivers: init %s: %w", f.Kind().String(), err))
		}
	}
	return errors.Join(errs...)
}

// AddDriver creates and installs f after boot, outside Init0/Init1.
// The driver-driver calls this (via Skel.Add) to serve DriverAdder.
func (m *Manager) AddDriver(ctx context.Context, f HyperDriverFactory) error {
	return m.add(ctx, f)
}

func (m *Manager) add(ctx context.Context, f HyperDriverFactory) error {
	d, err := f.Create(ctx, m.star, m.skel)
	key := selectorKey(f)
	if err != nil {
		runner := NewDriverRunner(nil, m.log)
		runner.Fatal(err.Error())
		m.store(f, runner, key)
		return err
	}

	runner := NewDriverRunner(d, m.log)
	if err := runner.OnAdded(ctx); err != nil {
		runner.Retrying(err.Error())
	}
	m.store(f, runner, key)
	return nil
}

func (m *Manager) store(f HyperDriverFactory, runner *DriverRunner, key string) {
	e := &entry{factory: f, runner: runner, key: key}
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Avail() == AvailInternal {
		m.internal = append(m.internal, e)
	} else {
		m.external = append(m.external, e)
	}
}

// Find resolves the DriverRunner whose factory's KindSelector matches
// kind, preferring the internal list over the external one so a star's
// own drivers can never be shadowed by an external declaration.
func (m *Manager) Find(kind loc.Kind) (*DriverRunner, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if r, ok := find(m.internal, kind); ok {
		return r, true
	}
	return find(m.external, kind)
}

func find(entries []*entry, kind loc.Kind) (*DriverRunner, bool) {
	for _, e := range entries {
		if e.factory.Selector().Matches(kind) {
			return e.runner, true
		}
	}
	return nil, false
}

// ExternalSelectors lists the KindSelectors a star publishes for
// remote driver discovery, in registration order.
func (m *Manager) ExternalSelectors() []loc.KindSelector {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]loc.KindSelector, 0, len(m.external))
	for _, e := range m.external {
		out = append(out, e.factory.Selector())
	}
	return out
}

// Aggregate rolls up every managed driver's current Status (internal
// and external together) into the star's published DriverStatus.
func (m *Manager) Aggregate() Aggregation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	children := make(map[string]Status, len(m.internal)+len(m.external))
	for _, e := range m.internal {
		children[e.key] = e.runner.Status()
	}
	for _, e := range m.external {
		children[e.key] = e.runner.Status()
	}
	return Aggregate(children, m.retryPolicy)
}

// Keys returns every registered selector key across both lists, sorted,
// for deterministic status reporting.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.internal)+len(m.external))
	for _, e := range m.internal {
		keys = append(keys, e.key)
	}
	for _, e := range m.external {
		keys = append(keys, e.key)
	}
	sort.Strings(keys)
	return keys
}

// Stop shuts down every managed driver's runner.
func (m *Manager) Stop() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.internal {
		e.runner.Stop()
	}
	for _, e := range m.external {
		e.runner.Stop()
	}
}
