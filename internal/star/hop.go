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

package star

import (
	"strconv"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

const hopsHeader = "hops"

// maxHops bounds inter-star forwarding; FromHyperway increments a
// transport's hop count on arrival and drops it (neither delivered nor
// forwarded) once the count exceeds maxHops.
const maxHops = 255

// wrapTransport builds the Hyp<Transport> wave carrying payload as its
// body, addressed to the destination star's surface to, with a zeroed
// hop count.
func wrapTransport(payload *wave.DirectedWave, to loc.Surface) *wave.DirectedWave {
	core := wave.NewDirectedCore(wave.HypMethod("Transport")).
		WithBody(wave.TransportSubstance(payload)).
		WithHeader(hopsHeader, "0")
	return wave.NewPing(payload.From, to, core)
}

// wrapHop wraps a Hyp<Transport> wave one layer of wire-framing deeper
// as the Hyp<Hop> sent over the physical hyperway link to an adjacent.
func wrapHop(transport *wave.DirectedWave, from, to loc.Surface) *wave.DirectedWave {
	core := wave.NewDirectedCore(wave.HypMethod("Hop")).WithBody(wave.HopSubstance(transport))
	return wave.NewPing(from, to, core)
}

// unwrapHop extracts the inner Hyp<Transport> wave from a Hyp<Hop>
// wave, if that is in fact what it carries.
func unwrapHop(hop *wave.DirectedWave) (*wave.DirectedWave, bool) {
	if hop.Core.Body.Kind != wave.SubstanceHop || hop.Core.Body.Wave == nil {
		return nil, false
	}
	return hop.Core.Body.Wave, true
}

// unwrapTransport extracts the inner payload wave from a Hyp<Transport>
// wave, if that is in fact what it carries.
func unwrapTransport(transport *wave.DirectedWave) (*wave.DirectedWave, bool) {
	if transport.Core.Body.Kind != wave.SubstanceTransport || transport.Core.Body.Wave == nil {
		return nil, false
	}
	return transport.Core.Body.Wave, true
}

// hopsOf reads the current hop count carried by a transport wave's
// headers, defaulting to 0 if absent or malformed.
func hopsOf(transport *wave.DirectedWave) int {
	s, ok := transport.Core.Headers[hopsHeader]
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// incrementHops returns a copy of transport with its hop count header
// incremented by one, without mutating the original's headers.
func incrementHops(transport *wave.DirectedWave) *wave.DirectedWave {
	n := hopsOf(transport) + 1
	core := transport.Core
	core.Headers = make(map[string]string, len(transport.Core.Headers))
	for k, v := range transport.Core.Headers {
		core.Headers[k] = v
	}
	core = core.WithHeader(hopsHeader, strconv.Itoa(n))

	next := *transport
	next.Core = core
	return &next
}
