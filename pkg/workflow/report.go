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
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/unikorn-cloud/objects/pkg/objects"
)

// Step names, in execution order.
const (
	StepList   = "list objects"
	StepCreate = "create object"
	StepRead   = "read created object"
	StepUpdate = "full update"
	StepPatch  = "partial update"
	StepDelete = "delete and verify removal"
)

// Steps returns every step name in execution order.
func Steps() []string {
	return []string{StepList, StepCreate, StepRead, StepUpdate, StepPatch, StepDelete}
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Passed reports whether the step succeeded.
func (s *StepResult) Passed() bool {
	return s.Err == nil
}

// Report describes a run.  Only executed steps appear, so a failed run ends
// with the failing step.
type Report struct {
	// Identifier is the id captured by the create step, if it got that far.
	Identifier objects.Identifier

	// Steps are the executed steps in order.
	Steps []StepResult

	// CleanedUp is set when the created object was deleted after a failure.
	CleanedUp bool
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool {
	for i := range r.Steps {
		if !r.Steps[i].Passed() {
			return true
		}
	}

	return false
}

// Names returns the names of executed steps.
func (r *Report) Names() []string {
	names := make([]string, len(r.Steps))

	for i := range r.Steps {
		names[i] = r.Steps[i].Name
	}

	return names
}

func (r *Report) String() string {
	var b strings.Builder

	for i := range r.Steps {
		step := &r.Steps[i]

		status := "PASS"
		if !step.Passed() {
			status = "FAIL"
		}

		fmt.Fprintf(&b, "%d) %s %s (%s)\n", i+1, status, step.Name, step.Duration.Round(time.Millisecond))
	}

	return b.String()
}

// Log emits one structured line per executed step followed by a summary.
func (r *Report) Log(logger logr.Logger) {
	for i := range r.Steps {
		step := &r.Steps[i]

		if !step.Passed() {
			logger.Error(step.Err, "step failed", "step", step.Name, "duration", step.Duration)

			continue
		}

		logger.Info("step passed", "step", step.Name, "duration", step.Duration)
	}

	logger.Info("workflow finished", "id", r.Identifier, "steps", len(r.Steps), "failed", r.Failed(), "cleanedUp", r.CleanedUp)
}
