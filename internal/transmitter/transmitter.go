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
	"fmt"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/starerr"
)

var errRequiredFieldUnset = starerr.BadRequest("required transmitter field was not set by caller")

// Proto is the not-yet-sent form of a directed wave, carrying only
// the fields the caller chose to set explicitly; ProtoTransmitter.Direct
// fills the rest per its configured strategies.
type Proto struct {
	fromSet, toSet, agentSet, scopeSet, handlingSet bool
	from                                             loc.Surface
	to                                               loc.Surface
	agent                                            wave.Agent
	scope                                            wave.Scope
	handling                                         wave.Handling
	core                                             wave.DirectedCore
}

func NewProto(core wave.DirectedCore) *Proto {
	return &Proto{core: core}
}

func (p *Proto) From(s loc.Surface) *Proto {
	p.from, p.fromSet = s, true
	return p
}

func (p *Proto) To(s loc.Surface) *Proto {
	p.to, p.toSet = s, true
	return p
}

func (p *Proto) Agent(a wave.Agent) *Proto {
	p.agent, p.agentSet = a, true
	return p
}

func (p *Proto) Scope(s wave.Scope) *Proto {
	p.scope, p.scopeSet = s, true
	return p
}

func (p *Proto) Handling(h wave.Handling) *Proto {
	p.handling, p.handlingSet = h, true
	return p
}

// ProtoTransmitter carries the four SetStrategy slots (from, to,
// agent, scope — handling is a fifth) and ships a filled-in Proto
// through a Router, registering with the Exchanger first when the
// wave is directed and awaiting its reply.
type ProtoTransmitter struct {
	FromStrategy     SetStrategy[loc.Surface]
	ToStrategy       SetStrategy[loc.Surface]
	AgentStrategy    SetStrategy[wave.Agent]
	ScopeStrategy    SetStrategy[wave.Scope]
	HandlingStrategy SetStrategy[wave.Handling]

	Router    Router
	Exchanger *exchanger.Exchanger
}

// Direct validates required slots, applies strategies, registers with
// the exchanger, routes the wave, and awaits the correlated reply.
func (t *ProtoTransmitter) Direct(ctx context.Context, p *Proto) (*wave.ReflectedWave, error) {
	from, err := t.FromStrategy.Apply(p.fromSet, p.from)
	if err != nil {
		return nil, fmt.Errorf("transmitter: from: %w", err)
	}
	to, err := t.ToStrategy.Apply(p.toSet, p.to)
	if err != nil {
		return nil, fmt.Errorf("transmitter: to: %w", err)
	}
	agent, err := t.AgentStrategy.Apply(p.agentSet, p.agent)
	if err != nil {
		return nil, fmt.Errorf("transmitter: agent: %w", err)
	}
	scope, err := t.ScopeStrategy.Apply(p.scopeSet, p.scope)
	if err != nil {
		return nil, fmt.Errorf("transmitter: scope: %w", err)
	}
	handling, err := t.HandlingStrategy.Apply(p.handlingSet, p.handling)
	if err != nil {
		return nil, fmt.Errorf("transmitter: handling: %w", err)
	}

	w := &wave.DirectedWave{
		ID:      wave.NewID(),
		Agent:   agent,
		Scope:   scope,
		Handles: handling,
		From:    from,
		To:      to,
		Core:    p.core,
	}

	var replyCh <-chan *wave.ReflectedWave
	if t.Exchanger != nil {
		replyCh = t.Exchanger.PingPong(w)
	}

	if err := t.Router.Route(ctx, w); err != nil {
		if t.Exchanger != nil {
			t.Exchanger.Cancel(w.ID)
		}
		return nil, fmt.Errorf("transmitter: routing: %w", err)
	}

	if replyCh == nil {
		return nil, nil
	}

	select {
	case reply := <-replyCh:
		return reply, nil
	case <-ctx.Done():
		t.Exchanger.Cancel(w.ID)
		return nil, ctx.Err()
	}
}

// DefaultStrategies returns a ProtoTransmitter whose slots use the
// spec's ordinary defaults: from/to required (None), agent defaulted
// to wave.AnonymousAgent(), scope defaulted to NoScope, handling
// defaulted to wave.DefaultHandling.
func DefaultStrategies(router Router, ex *exchanger.Exchanger) *ProtoTransmitter {
	return &ProtoTransmitter{
		FromStrategy:     None[loc.Surface](),
		ToStrategy:       None[loc.Surface](),
		AgentStrategy:    Fill(wave.AnonymousAgent()),
		ScopeStrategy:    Fill(wave.NoScope),
		HandlingStrategy: Fill(wave.DefaultHandling),
		Router:           router,
		Exchanger:        ex,
	}
}
