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

package workflow_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unikorn-cloud/objects/pkg/client"
	"github.com/unikorn-cloud/objects/pkg/objects"
	"github.com/unikorn-cloud/objects/pkg/testing/fake"
	"github.com/unikorn-cloud/objects/pkg/workflow"
)

func session(t *testing.T, baseURL string) *client.Client {
	t.Helper()

	options := client.NewOptions()
	options.BaseURL = baseURL
	options.RequestTimeout = 5 * time.Second
	options.ValidateSchema = true

	c, err := client.New(options)
	require.NoError(t, err)

	return c
}

// TestWorkflowAgainstFake runs the whole workflow end to end.
func TestWorkflowAgainstFake(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.Seed(objects.Object{Name: "Google Pixel 6 Pro", Data: objects.Data{"color": "Cloudy White", "capacity": "128 GB"}})

	options := workflow.NewOptions()
	options.StrictPatch = true

	report, err := workflow.New(session(t, server.URL), options).Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, workflow.Steps(), report.Names())

	id := report.Identifier.String()

	expected := []string{
		"GET /objects",
		"POST /objects",
		"GET /objects/" + id,
		"PUT /objects/" + id,
		"PATCH /objects/" + id,
		"GET /objects/" + id,
		"DELETE /objects/" + id,
		"GET /objects/" + id,
	}

	require.Equal(t, expected, s.Requests())
	require.Equal(t, 1, s.Len(), "only the seeded object remains")
}

// TestWorkflowRoundTrip ensures arbitrary payloads survive create and read back.
func TestWorkflowRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := []workflow.Payloads{
		{
			Create: &objects.ObjectPayload{Name: "Apple iPad Air", Data: objects.Data{"Generation": "4th", "Price": "519.99", "Capacity": "256 GB"}},
			Update: &objects.ObjectPayload{Name: "Apple iPad Air", Data: objects.Data{"Generation": "5th", "Price": 599.0}},
			Patch:  &objects.ObjectPayload{Name: "Apple iPad Air 2026"},
		},
		{
			Create: &objects.ObjectPayload{Name: "Samsung Galaxy Z Fold2", Data: objects.Data{"price": 689.99, "color": "Brown"}},
			Update: &objects.ObjectPayload{Name: "Samsung Galaxy Z Fold3", Data: objects.Data{"price": 1799, "color": "Phantom Black", "screen size": 7.6}},
			Patch:  &objects.ObjectPayload{Data: objects.Data{"color": "Phantom Green", "price": 1699.5}},
		},
	}

	for _, p := range payloads {
		s, server := fake.NewTestServer()

		options := workflow.NewOptions()
		options.Payloads = p
		options.StrictPatch = true

		_, err := workflow.New(session(t, server.URL), options).Run(t.Context())
		require.NoError(t, err, p.Create.Name)
		require.Equal(t, 0, s.Len())

		server.Close()
	}
}

// TestWorkflowStrictPatchDetectsReplace ensures a patch that drops fields is caught.
func TestWorkflowStrictPatchDetectsReplace(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.ReplaceOnPatch(true)

	options := workflow.NewOptions()
	options.StrictPatch = true

	report, err := workflow.New(session(t, server.URL), options).Run(t.Context())
	require.ErrorIs(t, err, workflow.ErrAssertion)
	require.ErrorIs(t, err, objects.ErrFieldMismatch)
	require.Equal(t, workflow.StepPatch, report.Steps[len(report.Steps)-1].Name)
	require.True(t, report.CleanedUp)
	require.Equal(t, 0, s.Len(), "object was cleaned up")
}

// TestWorkflowLenientPatch ensures only the sent fields are checked by default.
func TestWorkflowLenientPatch(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.ReplaceOnPatch(true)

	_, err := workflow.New(session(t, server.URL), nil).Run(t.Context())
	require.NoError(t, err)
}

// TestWorkflowCreateWithoutIdentifier ensures a missing id is fatal.
func TestWorkflowCreateWithoutIdentifier(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.OmitCreateIdentifier(true)

	report, err := workflow.New(session(t, server.URL), nil).Run(t.Context())
	require.ErrorIs(t, err, workflow.ErrAssertion)
	require.Equal(t, []string{workflow.StepList, workflow.StepCreate}, report.Names())
	require.Equal(t, []string{"GET /objects", "POST /objects"}, s.Requests())
}

// TestWorkflowServerFault ensures an unexpected status halts the run and cleans up.
func TestWorkflowServerFault(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.Fail(http.MethodPut, http.StatusInternalServerError)

	report, err := workflow.New(session(t, server.URL), nil).Run(t.Context())
	require.ErrorIs(t, err, workflow.ErrAssertion)
	require.Equal(t, http.StatusInternalServerError, client.StatusCode(err))
	require.Equal(t, workflow.StepUpdate, report.Steps[len(report.Steps)-1].Name)
	require.True(t, report.CleanedUp)
	require.Equal(t, 0, s.Len())
	require.Contains(t, report.String(), "4) FAIL full update")
}

// TestWorkflowDeleteFaultIsNotResent ensures a failed delete is reported once
// and cleanup does not issue it again.
func TestWorkflowDeleteFaultIsNotResent(t *testing.T) {
	t.Parallel()

	s, server := fake.NewTestServer()
	defer server.Close()

	s.Fail(http.MethodDelete, http.StatusInternalServerError)

	report, err := workflow.New(session(t, server.URL), nil).Run(t.Context())
	require.ErrorIs(t, err, workflow.ErrAssertion)
	require.Equal(t, http.StatusInternalServerError, client.StatusCode(err))
	require.Equal(t, workflow.Steps(), report.Names())
	require.False(t, report.CleanedUp)

	var deletes int

	for _, request := range s.Requests() {
		if request == http.MethodDelete+" /objects/"+report.Identifier.String() {
			deletes++
		}
	}

	require.Equal(t, 1, deletes)
	require.Equal(t, 1, s.Len())
}
