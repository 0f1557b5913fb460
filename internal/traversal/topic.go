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

package traversal

import (
	"context"
	"sync"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// TopicHandler receives a directed wave addressed to a topic its
// registration matches. The core it returns is always reflected and
// the traversal ends there; there is no way to decline and fall
// through to ordinary layer handling.
type TopicHandler func(ctx context.Context, trav *Traversal) wave.ReflectedCore

type topicRegistration struct {
	surface loc.Surface
	source  loc.SourcePattern
	handler TopicHandler
}

// TopicRegistry holds the star's registered TopicHandlers, keyed by
// (surface, source pattern). Lookup is linear; registries are small
// and populated at star startup, not on the wave-handling hot path in
// any way that matters at this scale.
type TopicRegistry struct {
	mu    sync.RWMutex
	regs  []topicRegistration
}

func NewTopicRegistry() *TopicRegistry {
	return &TopicRegistry{}
}

// Register adds a handler for waves whose `to` equals surface and
// whose `from` matches source.
func (r *TopicRegistry) Register(surface loc.Surface, source loc.SourcePattern, handler TopicHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, topicRegistration{surface: surface, source: source, handler: handler})
}

// lookupResult distinguishes "no registration at all for this
// surface+topic" (NotFound) from "a registration exists but the
// source didn't match" (Forbidden) — see DESIGN.md's Open Question
// decision on topic dispatch.
type lookupResult int

const (
	lookupNoHandler lookupResult = iota
	lookupForbidden
	lookupMatched
)

func (r *TopicRegistry) lookup(surface loc.Surface, from loc.Surface) (TopicHandler, lookupResult) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := false
	for _, reg := range r.regs {
		if !reg.surface.Equal(surface) {
			continue
		}
		found = true
		if reg.source.Matches(from) {
			return reg.handler, lookupMatched
		}
	}
	if found {
		return nil, lookupForbidden
	}
	return nil, lookupNoHandler
}
