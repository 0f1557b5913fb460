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

package wave

import "github.com/starlane-io/starlane/api/loc"

// AgentKind discriminates the variants of Agent.
type AgentKind int

const (
	AgentAnonymous AgentKind = iota
	AgentPoint
	AgentHyperUser
)

// Agent identifies the accountable party behind a wave: anonymous, a
// specific Point-identified user/particle, or the HYPERUSER superuser
// agent that always receives Super access.
type Agent struct {
	Kind  AgentKind
	Point loc.Point
}

func AnonymousAgent() Agent { return Agent{Kind: AgentAnonymous} }
func PointAgent(p loc.Point) Agent {
	return Agent{Kind: AgentPoint, Point: p}
}
func HyperUserAgent() Agent { return Agent{Kind: AgentHyperUser} }

func (a Agent) String() string {
	switch a.Kind {
	case AgentPoint:
		return a.Point.String()
	case AgentHyperUser:
		return "HYPERUSER"
	default:
		return "ANONYMOUS"
	}
}

func (a Agent) IsHyperUser() bool { return a.Kind == AgentHyperUser }

// Scope narrows a wave's access grant context: the route domain it
// was authenticated under, if any. An empty Scope applies no further
// restriction beyond the agent's own grants.
type Scope struct {
	Domain string
}

var NoScope = Scope{}
