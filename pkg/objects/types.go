/*
Copyright 2026 Nscale.

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

// Package objects models the resources served by the objects collection and
// the fixed payloads the workflow sends.
package objects

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMissingIdentifier is raised when a response carries no usable id.
	ErrMissingIdentifier = errors.New("missing identifier")

	// ErrFieldMismatch is raised when a returned field differs from what was sent.
	ErrFieldMismatch = errors.New("field mismatch")
)

// Identifier is the server assigned value naming a created object.
// The service issues strings, but numeric ids are tolerated and kept in
// their decimal form.
type Identifier string

// String implements fmt.Stringer.
func (i Identifier) String() string {
	return string(i)
}

// IsEmpty reports whether no identifier has been captured.
func (i Identifier) IsEmpty() bool {
	return i == ""
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (i *Identifier) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*i = Identifier(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: id is neither a string nor a number: %s", ErrMissingIdentifier, string(data))
	}

	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("%w: %w", ErrMissingIdentifier, err)
	}

	*i = Identifier(n.String())

	return nil
}

// Data is the free form attribute map of an object.  Keys may contain spaces,
// values are strings or numbers.
type Data map[string]any

// ObjectPayload is what gets sent on create, update and patch.  A patch only
// carries the changed subtree, so an empty name is omitted.
type ObjectPayload struct {
	Name string `json:"name,omitempty"`
	Data Data   `json:"data,omitempty"`
}

// Object is the server's view of a resource.
type Object struct {
	ID        Identifier `json:"id"`
	Name      string     `json:"name"`
	Data      Data       `json:"data"`
	CreatedAt *string    `json:"createdAt,omitempty"`
	UpdatedAt *string    `json:"updatedAt,omitempty"`
}

// DeleteResponse is returned by a successful delete.
type DeleteResponse struct {
	Message string `json:"message"`
}

// Error is returned by the service on failure e.g. a lookup of a deleted object.
type Error struct {
	Error string `json:"error"`
}
