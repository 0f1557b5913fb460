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

// Package metrics exposes Prometheus instrumentation for a running
// star: waves routed, layer-visit latency, hop counts, and a gauge
// per driver lifecycle phase. None of this is excluded by any
// Non-goal; it is ambient observability the way the teacher's
// generated manager carries its own metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector a star registers. A nil *Metrics is
// not valid; use New or NewForRegistry.
type Metrics struct {
	WavesRouted     *prometheus.CounterVec
	LayerVisitSecs  *prometheus.HistogramVec
	HopsForwarded   *prometheus.CounterVec
	DriverStatus    *prometheus.GaugeVec
	ExchangerPend   prometheus.Gauge
	ExchangerExpiry *prometheus.CounterVec
}

// New registers every collector against prometheus.DefaultRegisterer.
func New() *Metrics {
	return NewForRegistry(prometheus.DefaultRegisterer)
}

// NewForRegistry registers against an arbitrary registerer, so tests
// can use a private prometheus.NewRegistry() instead of the global
// default.
func NewForRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WavesRouted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starlane",
			Name:      "waves_routed_total",
			Help:      "Waves routed through a star, by method kind and direction.",
		}, []string{"method_kind", "direction"}),

		LayerVisitSecs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "starlane",
			Name:      "layer_visit_seconds",
			Help:      "Time spent in a single layer visit during traversal.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"layer"}),

		HopsForwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starlane",
			Name:      "hops_forwarded_total",
			Help:      "Hops forwarded to an adjacent star, by outcome.",
		}, []string{"adjacent", "outcome"}),

		DriverStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "starlane",
			Name:      "driver_status",
			Help:      "1 if a driver kind is currently in the given lifecycle phase, else 0.",
		}, []string{"kind", "phase"}),

		ExchangerPend: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "starlane",
			Name:      "exchanger_pending",
			Help:      "Directed waves currently awaiting a reflected reply.",
		}),

		ExchangerExpiry: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "starlane",
			Name:      "exchanger_timeouts_total",
			Help:      "Exchanger entries that expired before a reply arrived, by wait level.",
		}, []string{"wait"}),
	}
}

// SetDriverPhase records that kind is now in phase, clearing every
// other phase's gauge for that kind to 0 so at most one phase reads 1
// at a time.
func (m *Metrics) SetDriverPhase(kind string, phases []string, active string) {
	for _, phase := range phases {
		value := 0.0
		if phase == active {
			value = 1.0
		}
		m.DriverStatus.WithLabelValues(kind, phase).Set(value)
	}
}
