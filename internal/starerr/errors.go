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

// Package starerr defines Starlane's error taxonomy: the abstract
// reasons a layer operation can fail with, and their mapping onto
// reflected wave status codes.
package starerr

import (
	"errors"
	"fmt"
)

// Reason is the abstract vocabulary a layer operation fails with.
// Reasons are platform-agnostic; callers reflect or log by Reason,
// never by a raw status code.
type Reason string

const (
	// ReasonNotFound covers registry lookup failure, unknown driver
	// kind, unknown topic. Reflected as 404.
	ReasonNotFound Reason = "NotFound"
	// ReasonForbidden covers access check denial, topic source
	// mismatch. Reflected as 403.
	ReasonForbidden Reason = "Forbidden"
	// ReasonBadRequest covers a malformed point, malformed wave, or a
	// violated invariant such as the wrong layer for a topic. Reflected
	// as 400.
	ReasonBadRequest Reason = "BadRequest"
	// ReasonTimeout is an exchanger deadline expiring. Reflected as 408.
	ReasonTimeout Reason = "Timeout"
	// ReasonInternal covers invariant violations, e.g. a layered wave
	// reaching Core inside a star. Reflected as 500 and logged at error
	// level.
	ReasonInternal Reason = "Internal"
	// ReasonFatal is a driver initialization failure. Never reflected;
	// raises the owning star's status to Fatal.
	ReasonFatal Reason = "Fatal"
	// ReasonTransport covers hop TTL exceeded, no forwarder available,
	// or an unknown adjacent. Logged; directed waves reflect 503,
	// reflected waves are dropped.
	ReasonTransport Reason = "Transport"
)

// StatusCode maps a Reason onto the status carried in a ReflectedCore.
// ReasonFatal has no meaningful status code: it is never reflected.
func (r Reason) StatusCode() int {
	switch r {
	case ReasonNotFound:
		return 404
	case ReasonForbidden:
		return 403
	case ReasonBadRequest:
		return 400
	case ReasonTimeout:
		return 408
	case ReasonInternal:
		return 500
	case ReasonTransport:
		return 503
	default:
		return 500
	}
}

// Error is a Reason paired with a message and an optional wrapped
// cause, satisfying the standard error interface and errors.Unwrap.
type Error struct {
	Reason  Reason
	Message string
	Cause   error
}

func New(reason Reason, message string) *Error {
	return &Error{Reason: reason, Message: message}
}

func Wrap(reason Reason, message string, cause error) *Error {
	return &Error{Reason: reason, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target shares this error's Reason, allowing
// errors.Is(err, starerr.NotFound("")) style checks by Reason alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Reason == t.Reason
	}
	return false
}

func NotFound(message string) *Error   { return New(ReasonNotFound, message) }
func Forbidden(message string) *Error  { return New(ReasonForbidden, message) }
func BadRequest(message string) *Error { return New(ReasonBadRequest, message) }
func Timeout(message string) *Error    { return New(ReasonTimeout, message) }
func Internal(message string) *Error   { return New(ReasonInternal, message) }
func Fatal(message string) *Error      { return New(ReasonFatal, message) }
func Transport(message string) *Error  { return New(ReasonTransport, message) }

// ErrNotImplemented marks a code path spec.md leaves as an explicit
// open question resolved to "not implemented" rather than a silent
// heuristic (multi-hop routing through a non-adjacent, multi-forwarder
// path — see DESIGN.md's Open Question decisions).
var ErrNotImplemented = New(ReasonInternal, "not implemented")

// ReasonOf extracts the Reason carried by err, if any, walking wrapped
// causes via errors.As.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}
