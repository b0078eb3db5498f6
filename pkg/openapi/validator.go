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

package openapi

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

var (
	// ErrSchemaViolation is raised when a response does not conform to the document.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrUnknownOperation is raised when the path template or method is not documented.
	ErrUnknownOperation = errors.New("unknown operation")
)

//go:embed objects.yaml
var document []byte

var (
	//nolint:gochecknoglobals
	schemaOnce sync.Once
	//nolint:gochecknoglobals
	schema *openapi3.T
	//nolint:gochecknoglobals
	schemaErr error
)

// Schema returns the parsed and validated objects API document.
func Schema() (*openapi3.T, error) {
	schemaOnce.Do(func() {
		loader := openapi3.NewLoader()

		doc, err := loader.LoadFromData(document)
		if err != nil {
			schemaErr = fmt.Errorf("loading objects schema: %w", err)
			return
		}

		if err := doc.Validate(loader.Context); err != nil {
			schemaErr = fmt.Errorf("validating objects schema: %w", err)
			return
		}

		schema = doc
	})

	return schema, schemaErr
}

// Validator checks responses against the objects API document.
type Validator struct {
	doc *openapi3.T
}

// NewValidator returns a validator backed by the embedded document.
func NewValidator() (*Validator, error) {
	doc, err := Schema()
	if err != nil {
		return nil, err
	}

	return &Validator{
		doc: doc,
	}, nil
}

// route resolves a documented path template e.g. /objects/{id} and method.
func (v *Validator) route(method, template string) (*routers.Route, error) {
	pathItem := v.doc.Paths.Find(template)
	if pathItem == nil {
		return nil, fmt.Errorf("%w: path %s", ErrUnknownOperation, template)
	}

	operation := pathItem.GetOperation(strings.ToUpper(method))
	if operation == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, template)
	}

	route := &routers.Route{
		Spec:      v.doc,
		Path:      template,
		PathItem:  pathItem,
		Method:    strings.ToUpper(method),
		Operation: operation,
	}

	return route, nil
}

// ValidateResponse checks the status, content type and body of a response
// to the request described by method, template and path parameters.
func (v *Validator) ValidateResponse(ctx context.Context, method, template string, params map[string]string, status int, header http.Header, body []byte) error {
	route, err := v.route(method, template)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, route.Method, template, nil)
	if err != nil {
		return fmt.Errorf("building validation request: %w", err)
	}

	options := &openapi3filter.Options{
		IncludeResponseStatus: true,
		MultiError:            true,
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    request,
			PathParams: params,
			Route:      route,
			Options:    options,
		},
		Status:  status,
		Header:  header,
		Body:    io.NopCloser(bytes.NewReader(body)),
		Options: options,
	}

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("%w: %s %s status %d: %w", ErrSchemaViolation, route.Method, template, status, err)
	}

	return nil
}
