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

package starerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := map[Reason]int{
		ReasonNotFound:   404,
		ReasonForbidden:  403,
		ReasonBadRequest: 400,
		ReasonTimeout:    408,
		ReasonInternal:   500,
		ReasonTransport:  503,
	}
	for reason, code := range cases {
		assert.Equal(t, code, reason.StatusCode())
	}
}

func TestErrorsIsByReason(t *testing.T) {
	err := Wrap(ReasonNotFound, "no such particle", fmt.Errorf("boom"))
	assert.True(t, errors.Is(err, NotFound("")))
	assert.False(t, errors.Is(err, Forbidden("")))
}

func TestReasonOf(t *testing.T) {
	reason, ok := ReasonOf(Timeout("deadline exceeded"))
	assert.True(t, ok)
	assert.Equal(t, ReasonTimeout, reason)

	_, ok = ReasonOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(ReasonInternal, "wrapped", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
