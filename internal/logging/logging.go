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

// Package logging builds the logr.Logger threaded through every
// Starlane component, the same role logr.Logger plays in the
// teacher's PhaseContext.
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the backing zap logger.
type Options struct {
	// Development enables human-readable console encoding and
	// debug-level output; production enables JSON encoding at info
	// level.
	Development bool
}

// New builds a logr.Logger backed by zap, via zapr the same way the
// teacher would wire it into a controller-runtime manager, had one
// been retained here.
func New(opts Options) (logr.Logger, error) {
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}

// ForStar returns a logger scoped to one star, the vocabulary every
// star-rooted component (traversal, driver runner, gateway) logs
// under.
func ForStar(log logr.Logger, constellation, name string) logr.Logger {
	return log.WithValues("constellation", constellation, "star", name)
}
