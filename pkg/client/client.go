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

// Package client implements the HTTP session used to drive the objects API.
//
// Every request carries a fresh W3C trace context so a failure can be
// correlated with the service's logs, and every failure reports the trace
// ID it was sent with.
package client

//go:generate mockgen -source=client.go -destination=mock/interfaces.go -package=mock

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
	"sync"
	"time"

	"github.com/unikorn-cloud/objects/pkg/constants"
	"github.com/unikorn-cloud/objects/pkg/objects"
	"github.com/unikorn-cloud/objects/pkg/openapi"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// ClientInterface is the session as seen by the workflow.
type ClientInterface interface {
	// List returns the collection, the element shape is not constrained.
	List(ctx context.Context) ([]any, error)
	// Create adds an object, the returned object carries the new identifier.
	Create(ctx context.Context, payload *objects.ObjectPayload) (*objects.Object, error)
	// Get returns an object, a missing object yields a *StatusError.
	Get(ctx context.Context, id objects.Identifier) (*objects.Object, error)
	// Update replaces an object.
	Update(ctx context.Context, id objects.Identifier, payload *objects.ObjectPayload) (*objects.Object, error)
	// Patch merges changes into an object.
	Patch(ctx context.Context, id objects.Identifier, payload *objects.ObjectPayload) (*objects.Object, error)
	// Delete removes an object.
	Delete(ctx context.Context, id objects.Identifier) (*objects.DeleteResponse, error)
	// Close releases the session, it may be called more than once.
	Close()
}

// Client is a session against one objects service.
type Client struct {
	baseURL   string
	client    *http.Client
	options   *Options
	endpoints *Endpoints
	validator *openapi.Validator

	closeOnce sync.Once
	lock      sync.RWMutex
	closed    bool
}

// Ensure the interface is implemented.
var _ ClientInterface = &Client{}

// New opens a session.
func New(options *Options) (*Client, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(options.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBaseURL, options.BaseURL)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(options.BaseURL, "/"),
		client: &http.Client{
			Timeout: options.RequestTimeout,
		},
		options:   options,
		endpoints: NewEndpoints(),
	}

	if options.ValidateSchema {
		validator, err := openapi.NewValidator()
		if err != nil {
			return nil, err
		}

		c.validator = validator
	}

	return c, nil
}

// Close releases idle connections held by the session.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.lock.Lock()
		defer c.lock.Unlock()

		c.closed = true
		c.client.CloseIdleConnections()
	})
}

func (c *Client) isClosed() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.closed
}

// generateTraceID creates a new W3C trace ID.
// A new trace ID per request means a failure can be found in the service logs.
func generateTraceID() string {
	id := make([]byte, 16)
	_, _ = rand.Read(id)

	return hex.EncodeToString(id)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	id := make([]byte, 8)
	_, _ = rand.Read(id)

	return hex.EncodeToString(id)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// request describes a single call.
type request struct {
	method string
	// template is the documented path, used for schema validation.
	template string
	path     string
	params   map[string]string
	body     any
	expected int
}

// response is what comes back from a call.
type response struct {
	status int
	header http.Header
	body   []byte
}

//nolint:cyclop
func (c *Client) doRequest(ctx context.Context, r *request) (*response, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	log := log.FromContext(ctx)

	var body io.Reader

	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	traceParent := createTraceParent()
	traceID := extractTraceID(traceParent)

	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "objects-workflow=go")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.VersionString())

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error(err, "http request failed", "method", r.method, "path", r.path, "duration", duration, "traceID", traceID)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, r.method, r.path, err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading response body", "method", r.method, "path", r.path, "status", resp.StatusCode, "traceID", traceID)
		return nil, fmt.Errorf("%w: reading response body: %w", ErrTransport, err)
	}

	if c.options.LogRequests {
		log.Info("request", "method", r.method, "path", r.path, "status", resp.StatusCode, "duration", duration, "traceID", traceID)
	}

	if c.options.LogResponses && len(respBody) > 0 {
		log.Info("response body", "method", r.method, "path", r.path, "body", string(respBody))
	}

	if resp.StatusCode != r.expected {
		log.V(1).Info("unexpected status", "method", r.method, "path", r.path, "expected", r.expected, "status", resp.StatusCode, "traceID", traceID)

		return nil, &StatusError{
			Method:   r.method,
			Path:     r.path,
			Expected: r.expected,
			Actual:   resp.StatusCode,
			Body:     string(respBody),
			TraceID:  traceID,
		}
	}

	if c.validator != nil {
		if err := c.validator.ValidateResponse(ctx, r.method, r.template, r.params, resp.StatusCode, resp.Header, respBody); err != nil {
			return nil, fmt.Errorf("%w (trace ID: %s)", err, traceID)
		}
	}

	out := &response{
		status: resp.StatusCode,
		header: resp.Header,
		body:   respBody,
	}

	return out, nil
}

func decode[T any](r *response, what string) (*T, error) {
	var out T

	if err := json.Unmarshal(r.body, &out); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling %s response: %w", ErrDecode, what, err)
	}

	return &out, nil
}

// objectRequest builds a request addressed at a single object.
func (c *Client) objectRequest(method string, id objects.Identifier, body any) (*request, error) {
	path, err := c.endpoints.Object(id)
	if err != nil {
		return nil, err
	}

	r := &request{
		method:   method,
		template: ObjectTemplate,
		path:     path,
		params:   map[string]string{"id": id.String()},
		body:     body,
		expected: http.StatusOK,
	}

	return r, nil
}

func (c *Client) List(ctx context.Context) ([]any, error) {
	r := &request{
		method:   http.MethodGet,
		template: CollectionTemplate,
		path:     c.endpoints.Collection(),
		expected: http.StatusOK,
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	result, err := decode[[]any](resp, "objects")
	if err != nil {
		return nil, err
	}

	// null decodes cleanly but is not a collection.
	if *result == nil {
		return nil, fmt.Errorf("%w: objects response is not an array", ErrDecode)
	}

	return *result, nil
}

func (c *Client) Create(ctx context.Context, payload *objects.ObjectPayload) (*objects.Object, error) {
	r := &request{
		method:   http.MethodPost,
		template: CollectionTemplate,
		path:     c.endpoints.Collection(),
		body:     payload,
		expected: http.StatusOK,
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("creating object: %w", err)
	}

	return decode[objects.Object](resp, "object")
}

func (c *Client) Get(ctx context.Context, id objects.Identifier) (*objects.Object, error) {
	r, err := c.objectRequest(http.MethodGet, id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", id, err)
	}

	return decode[objects.Object](resp, "object")
}

func (c *Client) Update(ctx context.Context, id objects.Identifier, payload *objects.ObjectPayload) (*objects.Object, error) {
	r, err := c.objectRequest(http.MethodPut, id, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("updating object %s: %w", id, err)
	}

	return decode[objects.Object](resp, "object")
}

func (c *Client) Patch(ctx context.Context, id objects.Identifier, payload *objects.ObjectPayload) (*objects.Object, error) {
	r, err := c.objectRequest(http.MethodPatch, id, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("patching object %s: %w", id, err)
	}

	return decode[objects.Object](resp, "object")
}

func (c *Client) Delete(ctx context.Context, id objects.Identifier) (*objects.DeleteResponse, error) {
	r, err := c.objectRequest(http.MethodDelete, id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("deleting object %s: %w", id, err)
	}

	return decode[objects.DeleteResponse](resp, "delete")
}
