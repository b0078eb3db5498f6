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

package workflow

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/objects/pkg/objects"
)

var (
	// ErrPrecondition is raised when a step cannot start, e.g. no identifier
	// was captured.  No request is issued.
	ErrPrecondition = errors.New("precondition failed")

	// ErrAssertion is raised when a response does not match expectations.
	ErrAssertion = errors.New("assertion failed")
)

// Payloads are the bodies sent by the create, update and patch steps.
type Payloads struct {
	Create *objects.ObjectPayload
	Update *objects.ObjectPayload
	Patch  *objects.ObjectPayload
}

// DefaultPayloads returns the fixed payloads of the workflow.
func DefaultPayloads() Payloads {
	return Payloads{
		Create: objects.CreatePayload(),
		Update: objects.UpdatePayload(),
		Patch:  objects.PatchPayload(),
	}
}

// Options control how strictly the workflow checks the service.
type Options struct {
	// Payloads to send, defaults are used when unset.
	Payloads Payloads

	// StrictPatch additionally checks that a patch leaves fields it did
	// not send untouched, by reading the object back.
	StrictPatch bool

	// CleanupOnFailure deletes the created object when a later step fails.
	CleanupOnFailure bool
}

// NewOptions returns options with the defaults applied.
func NewOptions() *Options {
	return &Options{
		Payloads:         DefaultPayloads(),
		CleanupOnFailure: true,
	}
}

// AddFlags registers the options with a flag set.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.BoolVar(&o.StrictPatch, "strict-patch", false, "Check that a partial update leaves other fields unchanged.")
	f.BoolVar(&o.CleanupOnFailure, "cleanup-on-failure", true, "Delete the created object if the workflow fails part way.")
}

func (o *Options) payloads() Payloads {
	defaults := DefaultPayloads()
	p := o.Payloads

	if p.Create == nil {
		p.Create = defaults.Create
	}

	if p.Update == nil {
		p.Update = defaults.Update
	}

	if p.Patch == nil {
		p.Patch = defaults.Patch
	}

	return p
}
