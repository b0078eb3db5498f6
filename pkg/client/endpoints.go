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
	"fmt"

	"github.com/oapi-codegen/runtime"

	"github.com/unikorn-cloud/objects/pkg/constants"
	"github.com/unikorn-cloud/objects/pkg/objects"
)

const (
	// CollectionTemplate is the documented path of the collection.
	CollectionTemplate = constants.CollectionPath

	// ObjectTemplate is the documented path of a single object.
	ObjectTemplate = constants.CollectionPath + "/{id}"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

func (e *Endpoints) Collection() string {
	return CollectionTemplate
}

// Object returns the path of a single object, the identifier is escaped
// as a simple style path parameter.
func (e *Endpoints) Object(id objects.Identifier) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id.String())
	if err != nil {
		return "", fmt.Errorf("encoding object id: %w", err)
	}

	return fmt.Sprintf("%s/%s", CollectionTemplate, param), nil
}
