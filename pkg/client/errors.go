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

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport is raised when the request could not be completed.
	ErrTransport = errors.New("transport failure")

	// ErrUnexpectedStatus is raised when the status code is not the one expected.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrDecode is raised when a response body is not the expected JSON.
	ErrDecode = errors.New("malformed response body")

	// ErrClosed is raised when the session is used after Close.
	ErrClosed = errors.New("session closed")
)

// StatusError describes a response with an unexpected status.
type StatusError struct {
	Method   string
	Path     string
	Expected int
	Actual   int
	Body     string
	TraceID  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status code: expected %d, got %d, body: %s (trace ID: %s)", e.Method, e.Path, e.Expected, e.Actual, e.Body, e.TraceID)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// StatusCode returns the status of a failed request, or 0 if the error
// did not come from a response.
func StatusCode(err error) int {
	var statusErr *StatusError

	if errors.As(err, &statusErr) {
		return statusErr.Actual
	}

	return 0
}

// IsNotFound reports whether the service said the object does not exist.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
