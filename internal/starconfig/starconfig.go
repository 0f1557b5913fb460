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

// Package starconfig loads and validates the configuration a star
// boots from: its own identity, its adjacents, and the per-wait-level
// timeout table the exchanger schedules against.
package starconfig

import (
	"time"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
)

// Identity is the star's own key as it appears in config, before
// becoming a loc.StarKey.
type Identity struct {
	Constellation string `json:"constellation" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Index         int    `json:"index,omitempty" validate:"omitempty,gte=0"`
	HasIndex      bool   `json:"hasIndex,omitempty"`
	// Sub is this star's own StarSub ("central", "relay", "portal", ...),
	// the kind the built-in StarSub driver factory registers under.
	Sub string `json:"sub,omitempty" validate:"omitempty"`
}

func (id Identity) StarKey() loc.StarKey {
	return loc.StarKey{Constellation: id.Constellation, Name: id.Name, Index: id.Index, HasIndex: id.HasIndex}
}

// Adjacent is one neighboring star reachable over a hyperway.
type Adjacent struct {
	Constellation string `json:"constellation" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Address       string `json:"address" validate:"required"`
	// Sub is the adjacent's StarSub, consulted for IsForwarder when
	// routing a wave bound for a star neither of us is adjacent to.
	Sub string `json:"sub,omitempty" validate:"omitempty"`
}

func (a Adjacent) StarKey() loc.StarKey {
	return loc.StarKey{Constellation: a.Constellation, Name: a.Name}
}

// Timeouts is the per-Handling.Wait timeout table, each entry a
// Go duration string ("5s", "1m30s"). An empty entry falls back to
// wave.WaitLevel's own default (see Duration).
type Timeouts struct {
	Low  string `json:"low,omitempty" validate:"omitempty"`
	Med  string `json:"med,omitempty" validate:"omitempty"`
	High string `json:"high,omitempty" validate:"omitempty"`
}

// Duration resolves a wait level to its configured timeout, falling
// back to the level's built-in default when unset or malformed.
func (t Timeouts) Duration(level wave.WaitLevel) time.Duration {
	raw := ""
	switch level {
	case wave.WaitLow:
		raw = t.Low
	case wave.WaitMed:
		raw = t.Med
	case wave.WaitHigh:
		raw = t.High
	}
	if raw == "" {
		return level.Timeout()
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return level.Timeout()
	}
	return d
}

// Config is a star's complete boot configuration, decoded from YAML
// via sigs.k8s.io/yaml and validated with go-playground/validator.
type Config struct {
	Star      Identity   `json:"star" validate:"required"`
	Adjacents []Adjacent `json:"adjacents" validate:"omitempty,dive"`
	Timeouts  Timeouts   `json:"timeouts"`
}

func (c *Config) clone() *Config {
	cp := &Config{Star: c.Star, Timeouts: c.Timeouts}
	if c.Adjacents != nil {
		cp.Adjacents = make([]Adjacent, len(c.Adjacents))
		copy(cp.Adjacents, c.Adjacents)
	}
	return cp
}
