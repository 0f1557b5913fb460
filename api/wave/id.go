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

import "github.com/google/uuid"

// ID is a wave's unique identifier. Transports must preserve an ID
// (and a Pong's ReflectionOf) byte-exact for correlation.
type ID struct {
	uuid uuid.UUID
}

func NewID() ID { return ID{uuid: uuid.New()} }

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID{uuid: u}, nil
}

func (id ID) String() string { return id.uuid.String() }
func (id ID) Equal(o ID) bool { return id.uuid == o.uuid }
func (id ID) IsZero() bool    { return id.uuid == uuid.Nil }

// SessionID identifies a CLI or control-gateway session. The zero
// value means "no session", the wire encoding of `session: Option<SessionId>`.
type SessionID struct {
	uuid uuid.UUID
	set  bool
}

func NewSessionID() SessionID { return SessionID{uuid: uuid.New(), set: true} }

func (s SessionID) String() string {
	if !s.set {
		return ""
	}
	return s.uuid.String()
}

func (s SessionID) IsSet() bool { return s.set }
