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
	"time"

	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/objects/pkg/constants"
)

var (
	// ErrMissingBaseURL is raised when no base URL is configured.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrInvalidBaseURL is raised when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidTimeout is raised for a negative request timeout.
	ErrInvalidTimeout = errors.New("invalid request timeout")
)

// Options configure the session.
type Options struct {
	// BaseURL is the service root, the collection lives at BaseURL/objects.
	BaseURL string

	// RequestTimeout bounds each individual request.
	RequestTimeout time.Duration

	// LogRequests logs method, path, status and duration of every request.
	LogRequests bool

	// LogResponses logs every response body.
	LogResponses bool

	// ValidateSchema checks every response against the objects API document.
	ValidateSchema bool
}

// NewOptions returns options with the defaults applied.
func NewOptions() *Options {
	return &Options{
		BaseURL:        constants.DefaultBaseURL,
		RequestTimeout: 30 * time.Second,
	}
}

// AddFlags registers the options with a flag set.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.BaseURL, "base-url", constants.DefaultBaseURL, "Root URL of the objects service.")
	f.DurationVar(&o.RequestTimeout, "request-timeout", 30*time.Second, "Timeout of each HTTP request.")
	f.BoolVar(&o.LogRequests, "log-requests", false, "Log every request.")
	f.BoolVar(&o.LogResponses, "log-responses", false, "Log every response body.")
	f.BoolVar(&o.ValidateSchema, "validate-schema", false, "Validate responses against the objects API schema.")
}

// Validate checks the options are usable.
func (o *Options) Validate() error {
	if o.BaseURL == "" {
		return ErrMissingBaseURL
	}

	if o.RequestTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, o.RequestTimeout)
	}

	return nil
}
