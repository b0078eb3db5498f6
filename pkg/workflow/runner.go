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

// Package workflow verifies the objects service end to end.  Six steps run
// strictly in order through one session: list, create, read, full update,
// partial update, then delete followed by a lookup that must 404.  The
// identifier returned by create is passed explicitly to every later step
// and the first failure stops the run.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/unikorn-cloud/objects/pkg/client"
	"github.com/unikorn-cloud/objects/pkg/objects"
	"github.com/unikorn-cloud/objects/pkg/openapi"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Runner executes the workflow.
type Runner struct {
	// client is the session, owned by the runner for the run.
	client client.ClientInterface

	// options allows behaviour to be defined on the CLI.
	options *Options
}

// New returns a runner that takes ownership of the session, it is closed
// when Run returns.
func New(client client.ClientInterface, options *Options) *Runner {
	if options == nil {
		options = NewOptions()
	}

	return &Runner{
		client:  client,
		options: options,
	}
}

// classify marks failures that prove the service misbehaved as assertions,
// leaving transport and cancellation errors as they are.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrAssertion), errors.Is(err, ErrPrecondition):
		return err
	case errors.Is(err, client.ErrUnexpectedStatus),
		errors.Is(err, client.ErrDecode),
		errors.Is(err, openapi.ErrSchemaViolation),
		errors.Is(err, objects.ErrFieldMismatch),
		errors.Is(err, objects.ErrMissingIdentifier):
		return fmt.Errorf("%w: %w", ErrAssertion, err)
	}

	return err
}

// requireIdentifier guards every step that addresses the created object.
func requireIdentifier(id objects.Identifier) error {
	if id.IsEmpty() {
		return fmt.Errorf("%w: object id is undefined, cannot proceed", ErrPrecondition)
	}

	return nil
}

// step runs and records a single step.
func (r *Runner) step(ctx context.Context, report *Report, name string, f func(context.Context) error) error {
	logger := log.FromContext(ctx).WithValues("step", name)

	logger.V(1).Info("step starting")

	start := time.Now()

	err := f(log.IntoContext(ctx, logger))
	if err != nil {
		err = fmt.Errorf("step %q: %w", name, classify(err))
	}

	result := StepResult{
		Name:     name,
		Duration: time.Since(start),
		Err:      err,
	}

	report.Steps = append(report.Steps, result)

	if err != nil {
		logger.Error(err, "step failed", "duration", result.Duration)
		return err
	}

	logger.Info("step passed", "duration", result.Duration)

	return nil
}

// Run executes the workflow once.  The report lists executed steps, the
// error is the first failure.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer r.client.Close()

	payloads := r.options.payloads()

	report := &Report{}

	var (
		id      objects.Identifier
		deleted bool
	)

	steps := []struct {
		name string
		f    func(context.Context) error
	}{
		{
			name: StepList,
			f:    r.listObjects,
		},
		{
			name: StepCreate,
			f: func(ctx context.Context) error {
				created, err := r.createObject(ctx, payloads.Create)
				if err != nil {
					return err
				}

				id = created
				report.Identifier = created

				return nil
			},
		},
		{
			name: StepRead,
			f: func(ctx context.Context) error {
				return r.readObject(ctx, id, payloads.Create)
			},
		},
		{
			name: StepUpdate,
			f: func(ctx context.Context) error {
				return r.updateObject(ctx, id, payloads.Update)
			},
		},
		{
			name: StepPatch,
			f: func(ctx context.Context) error {
				return r.patchObject(ctx, id, payloads.Update, payloads.Patch)
			},
		},
		{
			name: StepDelete,
			f: func(ctx context.Context) error {
				return r.deleteObject(ctx, id, &deleted)
			},
		},
	}

	for _, s := range steps {
		if err := r.step(ctx, report, s.name, s.f); err != nil {
			if !id.IsEmpty() && !deleted && r.options.CleanupOnFailure {
				report.CleanedUp = r.cleanup(ctx, id)
			}

			return report, err
		}
	}

	return report, nil
}

// cleanup makes a single attempt at removing an object left behind by a
// failed run.  The outcome never changes the result of the run.
func (r *Runner) cleanup(ctx context.Context, id objects.Identifier) bool {
	ctx = context.WithoutCancel(ctx)

	log := log.FromContext(ctx).WithValues("id", id)

	if _, err := r.client.Delete(ctx, id); err != nil {
		log.Error(err, "failed to clean up object")
		return false
	}

	log.Info("cleaned up object")

	return true
}

func (r *Runner) listObjects(ctx context.Context) error {
	log := log.FromContext(ctx)

	list, err := r.client.List(ctx)
	if err != nil {
		return err
	}

	log.Info("all objects", "count", len(list))
	log.V(1).Info("all objects", "objects", list)

	return nil
}

func (r *Runner) createObject(ctx context.Context, payload *objects.ObjectPayload) (objects.Identifier, error) {
	log := log.FromContext(ctx)

	object, err := r.client.Create(ctx, payload)
	if err != nil {
		return "", err
	}

	if object.ID.IsEmpty() {
		return "", fmt.Errorf("%w: create response has no id", objects.ErrMissingIdentifier)
	}

	log.Info("saved object id", "id", object.ID)

	return object.ID, nil
}

func (r *Runner) readObject(ctx context.Context, id objects.Identifier, expected *objects.ObjectPayload) error {
	if err := requireIdentifier(id); err != nil {
		return err
	}

	log := log.FromContext(ctx)

	object, err := r.client.Get(ctx, id)
	if err != nil {
		return err
	}

	log.Info("fetched object", "object", object)

	if object.ID != id {
		return fmt.Errorf("%w: id: expected %s, got %s", ErrAssertion, id, object.ID)
	}

	return objects.Compare(expected, object)
}

func (r *Runner) updateObject(ctx context.Context, id objects.Identifier, payload *objects.ObjectPayload) error {
	if err := requireIdentifier(id); err != nil {
		return err
	}

	log := log.FromContext(ctx)

	object, err := r.client.Update(ctx, id, payload)
	if err != nil {
		return err
	}

	log.Info("updated object", "object", object)

	if object.ID != id {
		return fmt.Errorf("%w: id: expected %s, got %s", ErrAssertion, id, object.ID)
	}

	return objects.Compare(payload, object)
}

// patchObject checks the fields that were sent.  In strict mode the object
// is read back and must equal the previous state with the patch merged in.
func (r *Runner) patchObject(ctx context.Context, id objects.Identifier, previous, patch *objects.ObjectPayload) error {
	if err := requireIdentifier(id); err != nil {
		return err
	}

	log := log.FromContext(ctx)

	object, err := r.client.Patch(ctx, id, patch)
	if err != nil {
		return err
	}

	log.Info("patched object", "object", object)

	if object.ID != id {
		return fmt.Errorf("%w: id: expected %s, got %s", ErrAssertion, id, object.ID)
	}

	if err := objects.Compare(patch, object); err != nil {
		return err
	}

	if !r.options.StrictPatch {
		return nil
	}

	current, err := r.client.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := objects.Compare(objects.Merge(previous, patch), current); err != nil {
		return fmt.Errorf("patch modified fields it did not send: %w", err)
	}

	return nil
}

// deleteObject removes the object, then proves it is gone with a lookup
// that must return 404.  Any delete attempt marks the object as handled so
// a failed delete is never sent again by cleanup.
func (r *Runner) deleteObject(ctx context.Context, id objects.Identifier, deleted *bool) error {
	if err := requireIdentifier(id); err != nil {
		return err
	}

	log := log.FromContext(ctx)

	*deleted = true

	response, err := r.client.Delete(ctx, id)
	if err != nil {
		return err
	}

	log.Info("deleted response", "message", response.Message)

	object, err := r.client.Get(ctx, id)
	if err == nil {
		return fmt.Errorf("%w: object %s still exists after delete: %v", ErrAssertion, id, object)
	}

	if status := client.StatusCode(err); status != http.StatusNotFound {
		if status == 0 {
			return err
		}

		return fmt.Errorf("%w: lookup after delete: expected status %d, got %d", ErrAssertion, http.StatusNotFound, status)
	}

	return nil
}
