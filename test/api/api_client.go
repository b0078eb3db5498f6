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

//nolint:err113,revive // dynamic errors and naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
)

type APIClient struct {
	baseURL string
	client  *http.Client
	config  *TestConfig
}

// NewAPIClientWithConfig returns a client for the configured service, baseURL
// overrides the configuration so the suites can point it at the fake.
func NewAPIClientWithConfig(config *TestConfig, baseURL string) *APIClient {
	if baseURL == "" {
		baseURL = config.BaseURL
	}

	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		config: config,
	}
}

// Close releases idle connections.
func (c *APIClient) Close() {
	c.client.CloseIdleConnections()
}

// logError logs a generic error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	ginkgo.GinkgoWriter.Printf("[%s %s] ERROR %s duration=%s traceparent=%s error=%v\n", method, path, context, duration, traceParent, err)
	c.logTraceContext(traceParent)
}

// logUnexpectedStatus logs an unexpected HTTP status code.
func (c *APIClient) logUnexpectedStatus(method, path string, expectedStatus, actualStatus int, body, traceParent string) {
	ginkgo.GinkgoWriter.Printf("[%s %s] UNEXPECTED STATUS expected=%d got=%d body=%s traceparent=%s\n", method, path, expectedStatus, actualStatus, body, traceParent)
	c.logTraceContext(traceParent)
}

// logTraceContext logs the trace context information.
func (c *APIClient) logTraceContext(traceParent string) {
	ginkgo.GinkgoWriter.Printf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request\n", extractTraceID(traceParent))
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	traceID := make([]byte, 16)
	_, _ = rand.Read(traceID)

	spanID := make([]byte, 8)
	_, _ = rand.Read(spanID)

	return fmt.Sprintf("00-%s-%s-01", hex.EncodeToString(traceID), hex.EncodeToString(spanID))
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// Response is a raw response, status is always populated when err is nil.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON decodes the body as a generic value.
func (r *Response) JSON() (interface{}, error) {
	var out interface{}

	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	return out, nil
}

// Object decodes the body as a JSON object.
func (r *Response) Object() (map[string]interface{}, error) {
	var out map[string]interface{}

	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling object response: %w", err)
	}

	return out, nil
}

// Do issues a request and returns whatever status came back, expectedStatus
// of 0 accepts any status.
func (c *APIClient) Do(ctx context.Context, method, path string, body interface{}, expectedStatus int) (*Response, error) {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logError(method, path, duration, traceParent, err, "http request failed")
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logError(method, path, duration, traceParent, err, "reading response body")
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		ginkgo.GinkgoWriter.Printf("[%s %s] status=%d duration=%s traceparent=%s\n", method, path, resp.StatusCode, duration, traceParent)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		ginkgo.GinkgoWriter.Printf("[%s %s] response body: %s\n", method, path, string(respBody))
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}

	if expectedStatus > 0 && resp.StatusCode != expectedStatus {
		c.logUnexpectedStatus(method, path, expectedStatus, resp.StatusCode, string(respBody), traceParent)
		return out, fmt.Errorf("unexpected status code: expected %d, got %d, body: %s (trace ID: %s)", expectedStatus, resp.StatusCode, string(respBody), extractTraceID(traceParent))
	}

	return out, nil
}

func objectPath(id string) string {
	return "/objects/" + url.PathEscape(id)
}

// ListObjects returns the raw collection response.
func (c *APIClient) ListObjects(ctx context.Context) (*Response, error) {
	return c.Do(ctx, http.MethodGet, "/objects", nil, 0)
}

// CreateObject creates an object, anything but 200 is an error.
func (c *APIClient) CreateObject(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodPost, "/objects", body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}

	return resp.Object()
}

// GetObject returns the raw response so callers can assert on 404.
func (c *APIClient) GetObject(ctx context.Context, id string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, objectPath(id), nil, 0)
}

// UpdateObject replaces an object.
func (c *APIClient) UpdateObject(ctx context.Context, id string, body map[string]interface{}) (map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodPut, objectPath(id), body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("updating object: %w", err)
	}

	return resp.Object()
}

// PatchObject merges changes into an object.
func (c *APIClient) PatchObject(ctx context.Context, id string, body map[string]interface{}) (map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodPatch, objectPath(id), body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("patching object: %w", err)
	}

	return resp.Object()
}

// DeleteObject removes an object.
func (c *APIClient) DeleteObject(ctx context.Context, id string) (map[string]interface{}, error) {
	resp, err := c.Do(ctx, http.MethodDelete, objectPath(id), nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("deleting object: %w", err)
	}

	return resp.Object()
}
