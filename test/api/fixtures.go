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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/objects/pkg/client"
	"github.com/unikorn-cloud/objects/pkg/objects"
	"github.com/unikorn-cloud/objects/pkg/testing/fake"
)

func generateRandomName(prefix string) string {
	bytes := make([]byte, 4) // 8 hex characters
	_, _ = rand.Read(bytes)

	return fmt.Sprintf("%s-%s", prefix, hex.EncodeToString(bytes))
}

// Target is the service the suites run against.
type Target struct {
	BaseURL string

	// Fake is set when running against the in-memory service.
	Fake *fake.Server

	server *httptest.Server
}

// NewTarget returns the configured service, or starts the fake if none is.
func NewTarget(config *TestConfig) *Target {
	if !config.UseFake() {
		return &Target{
			BaseURL: config.BaseURL,
		}
	}

	s, server := fake.NewTestServer()

	return &Target{
		BaseURL: server.URL,
		Fake:    s,
		server:  server,
	}
}

// Close stops the fake, if one was started.
func (t *Target) Close() {
	if t.server != nil {
		t.server.Close()
	}
}

// NewSession returns a typed client against the target.
func (t *Target) NewSession(config *TestConfig) *client.Client {
	options := client.NewOptions()
	options.BaseURL = t.BaseURL
	options.RequestTimeout = config.RequestTimeout
	options.ValidateSchema = config.ValidateSchema
	options.LogRequests = config.LogRequests
	options.LogResponses = config.LogResponses

	session, err := client.New(options)
	Expect(err).NotTo(HaveOccurred())

	return session
}

// ObjectPayloadBuilder builds object payloads for testing.
type ObjectPayloadBuilder struct {
	payload map[string]interface{}
}

// NewObjectPayload creates a new builder seeded with the workflow's create payload.
func NewObjectPayload() *ObjectPayloadBuilder {
	return FromPayload(objects.CreatePayload())
}

// FromPayload creates a builder from a typed payload.
func FromPayload(p *objects.ObjectPayload) *ObjectPayloadBuilder {
	payload := map[string]interface{}{}

	if p.Name != "" {
		payload["name"] = p.Name
	}

	if p.Data != nil {
		payload["data"] = map[string]interface{}(maps.Clone(p.Data))
	}

	return &ObjectPayloadBuilder{
		payload: payload,
	}
}

// WithName sets the object name.
func (b *ObjectPayloadBuilder) WithName(name string) *ObjectPayloadBuilder {
	b.payload["name"] = name
	return b
}

// WithUniqueName sets a random name so parallel runs do not collide.
func (b *ObjectPayloadBuilder) WithUniqueName(prefix string) *ObjectPayloadBuilder {
	return b.WithName(generateRandomName(prefix))
}

// WithRandomDevice replaces the payload with a generated device so data
// shapes other than the workflow's are covered.
func (b *ObjectPayloadBuilder) WithRandomDevice() *ObjectPayloadBuilder {
	f := gofakeit.New(0)

	b.payload = map[string]interface{}{}

	return b.WithName(f.ProductName()).
		WithData("color", f.Color()).
		WithData("capacity GB", f.Number(16, 2048)).
		WithData("price", f.Price(10, 5000)).
		WithData("manufacturer", f.Company())
}

// WithData sets a single data field.
func (b *ObjectPayloadBuilder) WithData(key string, value interface{}) *ObjectPayloadBuilder {
	data, ok := b.payload["data"].(map[string]interface{})
	if !ok {
		data = map[string]interface{}{}
		b.payload["data"] = data
	}

	data[key] = value

	return b
}

// Build returns the completed payload.
func (b *ObjectPayloadBuilder) Build() map[string]interface{} {
	return b.payload
}

// ObjectID extracts the identifier from a created object.
func ObjectID(object map[string]interface{}) string {
	Expect(object).To(HaveKey("id"), "created object must carry an id")

	var id string

	switch t := object["id"].(type) {
	case string:
		id = t
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		Fail(fmt.Sprintf("id must be a string or number, got %T", t))
	}

	Expect(id).NotTo(BeEmpty())

	return id
}

// CreateObjectWithCleanup creates an object and schedules its deletion.
func CreateObjectWithCleanup(ctx context.Context, apiClient *APIClient, payload map[string]interface{}) (map[string]interface{}, string) {
	object, err := apiClient.CreateObject(ctx, payload)
	Expect(err).NotTo(HaveOccurred())

	objectID := ObjectID(object)

	GinkgoWriter.Printf("Created object with ID: %s\n", objectID)

	// Schedule cleanup - this runs whether the test passes or fails so we don't need to clean up manually
	DeferCleanup(func() {
		resp, err := apiClient.GetObject(ctx, objectID)
		if err == nil && resp.StatusCode == http.StatusNotFound {
			return
		}

		if _, err := apiClient.DeleteObject(ctx, objectID); err != nil {
			GinkgoWriter.Printf("Warning: Failed to delete object %s: %v\n", objectID, err)
		} else {
			GinkgoWriter.Printf("Successfully deleted object: %s\n", objectID)
		}
	})

	return object, objectID
}

// VerifyData checks every expected data field against a returned object.
func VerifyData(object map[string]interface{}, expected map[string]interface{}) {
	Expect(object).To(HaveKey("data"))

	data, ok := object["data"].(map[string]interface{})
	Expect(ok).To(BeTrue(), "data must be an object")

	for key, value := range expected {
		Expect(data).To(HaveKey(key))
		Expect(objects.EqualValue(value, data[key])).To(BeTrue(), "data[%q]: expected %v, got %v", key, value, data[key])
	}
}

// VerifyGone checks a lookup of the object returns 404.
func VerifyGone(ctx context.Context, apiClient *APIClient, objectID string) {
	resp, err := apiClient.GetObject(ctx, objectID)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusNotFound), "object %s should no longer exist", objectID)
}
