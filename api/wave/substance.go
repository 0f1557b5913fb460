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

import (
	"fmt"

	"github.com/starlane-io/starlane/api/loc"
)

// SubstanceKind discriminates the variants of Substance.
type SubstanceKind int

const (
	SubstanceEmpty SubstanceKind = iota
	SubstanceBin
	SubstanceText
	SubstanceErrors
	SubstanceCommand
	SubstanceRawCommand
	SubstanceSurface
	SubstanceHop
	SubstanceTransport
	SubstanceUltraWave
	SubstanceSys
)

func (k SubstanceKind) String() string {
	names := [...]string{
		"Empty", "Bin", "Text", "Errors", "Command", "RawCommand",
		"Surface", "Hop", "Transport", "UltraWave", "Sys",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Substance(%d)", int(k))
	}
	return names[k]
}

// Substance is the tagged union every wave body is carried as.
// Exactly the fields relevant to Kind are populated; the rest are
// zero.
type Substance struct {
	Kind SubstanceKind

	Bin     []byte
	Text    string
	Errors  []string
	Command string
	Surface loc.Surface

	// Hop and Transport wrap an inner directed wave (Ping) one layer of
	// wire-framing deep; see the Hop/Transport framing in
	// internal/star/hop.go. They hold *DirectedWave rather than a concrete
	// struct to avoid an import cycle with the hop-producing code.
	Wave *DirectedWave

	// ReflectedWave carries a Pong when UltraWave wraps a reply leaving
	// toward the fabric rather than a request.
	ReflectedWave *ReflectedWave

	Sys SysMessage
}

// SysMessage is the payload of Substance Sys, the control-plane
// variant exchanged between a star and its drivers or between stars
// out of band of ordinary particle traffic.
type SysMessage struct {
	Command string
	Args    map[string]string
}

func EmptySubstance() Substance { return Substance{Kind: SubstanceEmpty} }
func BinSubstance(b []byte) Substance {
	return Substance{Kind: SubstanceBin, Bin: b}
}
func TextSubstance(s string) Substance {
	return Substance{Kind: SubstanceText, Text: s}
}
func ErrorsSubstance(errs ...string) Substance {
	return Substance{Kind: SubstanceErrors, Errors: errs}
}
func CommandSubstance(cmd string) Substance {
	return Substance{Kind: SubstanceCommand, Command: cmd}
}
func RawCommandSubstance(cmd string) Substance {
	return Substance{Kind: SubstanceRawCommand, Command: cmd}
}
func SurfaceSubstance(s loc.Surface) Substance {
	return Substance{Kind: SubstanceSurface, Surface: s}
}
func HopSubstance(w *DirectedWave) Substance {
	return Substance{Kind: SubstanceHop, Wave: w}
}
func TransportSubstance(w *DirectedWave) Substance {
	return Substance{Kind: SubstanceTransport, Wave: w}
}
func UltraWaveSubstance(w *DirectedWave) Substance {
	return Substance{Kind: SubstanceUltraWave, Wave: w}
}
func UltraPongSubstance(w *ReflectedWave) Substance {
	return Substance{Kind: SubstanceUltraWave, ReflectedWave: w}
}
func SysSubstance(msg SysMessage) Substance {
	return Substance{Kind: SubstanceSys, Sys: msg}
}

func (s Substance) String() string {
	switch s.Kind {
	case SubstanceText:
		return s.Text
	case SubstanceBin:
		return fmt.Sprintf("Bin(%d bytes)", len(s.Bin))
	default:
		return s.Kind.String()
	}
}
