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

// Package wave implements Starlane's message model: directed and
// reflected waves, their cores, the Substance payload union, and
// handling/agent/scope metadata.
package wave

import "fmt"

// MethodKind discriminates the variants of Method.
type MethodKind int

const (
	MethodExt MethodKind = iota
	MethodHyp
	MethodCmd
	MethodHttp
)

func (k MethodKind) String() string {
	switch k {
	case MethodExt:
		return "Ext"
	case MethodHyp:
		return "Hyp"
	case MethodCmd:
		return "Cmd"
	case MethodHttp:
		return "Http"
	default:
		return "Unknown"
	}
}

// Method is the tagged variant describing what kind of operation a
// DirectedCore requests: an extension-defined verb (Ext), a
// hyperspace control verb (Hyp), a driver command (Cmd), or an HTTP
// verb (Http).
type Method struct {
	Kind MethodKind
	// Verb carries the Ext verb name, the Hyp control name, or the Cmd
	// name. Unused for Http.
	Verb string
	// Http carries the HTTP method name when Kind == MethodHttp (GET,
	// POST, ...).
	Http string
}

func ExtMethod(verb string) Method  { return Method{Kind: MethodExt, Verb: verb} }
func HypMethod(verb string) Method  { return Method{Kind: MethodHyp, Verb: verb} }
func CmdMethod(verb string) Method  { return Method{Kind: MethodCmd, Verb: verb} }
func HttpMethod(verb string) Method { return Method{Kind: MethodHttp, Http: verb} }

func (m Method) String() string {
	if m.Kind == MethodHttp {
		return fmt.Sprintf("Http<%s>", m.Http)
	}
	return fmt.Sprintf("%s<%s>", m.Kind.String(), m.Verb)
}

func (m Method) Equal(o Method) bool {
	return m.Kind == o.Kind && m.Verb == o.Verb && m.Http == o.Http
}
