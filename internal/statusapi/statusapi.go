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

// Package statusapi is a small read-only HTTP surface for operators:
// liveness, driver lifecycle status, and the star's own identity and
// adjacents. It carries no control-plane authority — that is
// internal/gateway's job — and never mutates star state.
package statusapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/internal/driver"
)

// DriverSource answers the drivers manager's current aggregate view.
// internal/driver.Manager satisfies this.
type DriverSource interface {
	Aggregate() driver.Aggregation
}

// AdjacentSource answers the star's configured adjacents. Kept
// narrow so statusapi depends on no more of internal/star than the
// one thing it reports.
type AdjacentSource interface {
	Adjacents() []loc.StarKey
}

// New builds the chi.Router serving the status endpoints for one
// star. CORS is permissive by default (GET-only, no credentials) since
// this surface carries no secrets and no mutation.
func New(star loc.StarKey, drivers DriverSource, adjacents AdjacentSource) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/drivers", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, driversView(drivers.Aggregate()))
	})

	r.Get("/stars", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, buildStarsView(star, adjacents.Adjacents()))
	})

	return r
}

type driverView struct {
	Status   string            `json:"status"`
	Children map[string]string `json:"children"`
}

func driversView(agg driver.Aggregation) driverView {
	children := make(map[string]string, len(agg.Children))
	for k, s := range agg.Children {
		children[k] = s.String()
	}
	return driverView{Status: agg.Status.String(), Children: children}
}

type starsView struct {
	Self      string   `json:"self"`
	Adjacents []string `json:"adjacents"`
}

func buildStarsView(self loc.StarKey, adjacents []loc.StarKey) starsView {
	keys := make([]string, 0, len(adjacents))
	for _, a := range adjacents {
		keys = append(keys, a.String())
	}
	return starsView{Self: self.String(), Adjacents: keys}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
