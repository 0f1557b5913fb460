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

package starconfig

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/starlane-io/starlane/internal/starerr"
)

// Validator validates a decoded Config by struct tag.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate aggregates every struct-tag violation into a single
// starerr.BadRequest rather than failing on the first one, matching
// the teacher's practice of collecting a full field.ErrorList.
func (vd *Validator) Validate(cfg *Config) error {
	if err := vd.v.Struct(cfg); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return starerr.Wrap(starerr.ReasonBadRequest, "star config validation", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return starerr.New(starerr.ReasonBadRequest, strings.Join(msgs, "; "))
	}
	return nil
}
