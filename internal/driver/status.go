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

// Package driver implements the driver runtime: DriversBuilder,
// DriverRunner, ParticleSphere, and status aggregation across a
// star's drivers.
package driver

import "fmt"

// Phase is a driver's lifecycle state.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhasePending
	PhaseInit
	PhaseReady
	// PhaseRetrying is transient: the driver hit a recoverable error and
	// is retrying initialization or a bind operation.
	PhaseRetrying
	// PhaseFatal is terminal: the driver cannot recover.
	PhaseFatal
)

func (p Phase) String() string {
	switch p {
	case PhaseUnknown:
		return "Unknown"
	case PhasePending:
		return "Pending"
	case PhaseInit:
		return "Init"
	case PhaseReady:
		return "Ready"
	case PhaseRetrying:
		return "Retrying"
	case PhaseFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Status is a driver's watchable lifecycle state: a Phase plus a
// message carried by the Fatal and Retrying phases.
type Status struct {
	Phase   Phase
	Message string
}

func (s Status) String() string {
	if s.Message == "" {
		return s.Phase.String()
	}
	return fmt.Sprintf("%s(%s)", s.Phase, s.Message)
}

func ReadyStatus() Status  { return Status{Phase: PhaseReady} }
func InitStatus() Status   { return Status{Phase: PhaseInit} }
func PendingStatus() Status { return Status{Phase: PhasePending} }
func FatalStatus(message string) Status {
	return Status{Phase: PhaseFatal, Message: message}
}
func RetryingStatus(message string) Status {
	return Status{Phase: PhaseRetrying, Message: message}
}

// ToleranceKind selects how the manager's status aggregation treats
// Retrying children. See DESIGN.md's Open Question decision on the
// wrangle/driver retry-tolerance knob.
type ToleranceKind int

const (
	// ToleranceNone preserves the spec's literal behavior: any
	// Retrying child (with no Fatal child) escalates the aggregate to
	// Fatal.
	ToleranceNone ToleranceKind = iota
	// ToleranceBounded allows up to N Retrying children before
	// escalating to Fatal.
	ToleranceBounded
)

// RetryPolicy configures how many concurrently Retrying drivers the
// aggregate will tolerate before escalating to Fatal.
type RetryPolicy struct {
	Kind  ToleranceKind
	Bound int
}

var DefaultRetryPolicy = RetryPolicy{Kind: ToleranceNone}

func BoundedRetryPolicy(n int) RetryPolicy {
	return RetryPolicy{Kind: ToleranceBounded, Bound: n}
}

// Aggregation is the manager's rolled-up view across all of its
// drivers' statuses.
type Aggregation struct {
	Status   Status
	Children map[string]Status
}

// Aggregate computes the drivers manager's published DriverStatus
// from a snapshot of each driver's current Status, keyed by selector
// string, per spec §4.4 step 3.
func Aggregate(children map[string]Status, policy RetryPolicy) Aggregation {
	agg := Aggregation{Children: children}

	if len(children) == 0 {
		agg.Status = Status{Phase: PhaseUnknown}
		return agg
	}

	var readyCount, fatalCount, retryingCount, initCount int
	var firstFatalMsg, firstRetryingMsg string

	for _, s := range children {
		switch s.Phase {
		case PhaseReady:
			readyCount++
		case PhaseFatal:
			fatalCount++
			if firstFatalMsg == "" {
				firstFatalMsg = s.Message
			}
		case PhaseRetrying:
			retryingCount++
			if firstRetryingMsg == "" {
				firstRetryingMsg = s.Message
			}
		case PhaseInit:
			initCount++
		}
	}

	total := len(children)

	switch {
	case readyCount == total:
		agg.Status = ReadyStatus()
	case fatalCount > 0:
		agg.Status = FatalStatus(fmt.Sprintf("%d driver(s) fatal: %s", fatalCount, firstFatalMsg))
	case retryingCount > 0 && (policy.Kind == ToleranceNone || retryingCount > policy.Bound):
		agg.Status = FatalStatus(fmt.Sprintf("one or more drivers retrying: %s", firstRetryingMsg))
	case initCount > 0 || retryingCount > 0:
		agg.Status = InitStatus()
	default:
		agg.Status = Status{Phase: PhaseUnknown}
	}

	return agg
}
