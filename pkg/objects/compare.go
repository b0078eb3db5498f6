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

package objects

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spjmurray/go-util/pkg/set"
)

// number normalizes the numeric types that can appear in a payload or a
// decoded response.  Floats convert via their shortest representation so
// 2099.99 sent matches 2099.99 decoded.
func number(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return decimal.Zero, false
		}

		return d, true
	}

	return decimal.Zero, false
}

// EqualValue compares a sent value with a returned one.  Numbers compare
// numerically, so 2019 matches a decoded 2019.0, everything else must be
// equal in type and value.
func EqualValue(expected, actual any) bool {
	if e, ok := number(expected); ok {
		a, ok := number(actual)

		return ok && e.Equal(a)
	}

	if e, ok := expected.(string); ok {
		a, ok := actual.(string)

		return ok && e == a
	}

	return fmt.Sprintf("%#v", expected) == fmt.Sprintf("%#v", actual)
}

// CompareData checks that every key in expected is present in actual with an
// equal value.  Keys only present in actual are ignored.
func CompareData(expected, actual Data) error {
	expectedKeys := set.New[string](slices.Collect(maps.Keys(expected))...)
	actualKeys := set.New[string](slices.Collect(maps.Keys(actual))...)

	var missing []string

	for key := range expectedKeys.Difference(actualKeys).All() {
		missing = append(missing, key)
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return fmt.Errorf("%w: data is missing keys %s", ErrFieldMismatch, strings.Join(missing, ", "))
	}

	var mismatched []string

	for key := range expectedKeys.Intersection(actualKeys).All() {
		if !EqualValue(expected[key], actual[key]) {
			mismatched = append(mismatched, fmt.Sprintf("data[%q]: expected %v, got %v", key, expected[key], actual[key]))
		}
	}

	if len(mismatched) > 0 {
		slices.Sort(mismatched)

		return fmt.Errorf("%w: %s", ErrFieldMismatch, strings.Join(mismatched, "; "))
	}

	return nil
}

// Compare checks an object against the payload that produced it.  An empty
// payload name is not checked, as is the case for a patch.
func Compare(expected *ObjectPayload, actual *Object) error {
	if expected.Name != "" && expected.Name != actual.Name {
		return fmt.Errorf("%w: name: expected %q, got %q", ErrFieldMismatch, expected.Name, actual.Name)
	}

	return CompareData(expected.Data, actual.Data)
}

// Merge applies a patch to a payload as a merging server would: the name is
// replaced when set and data keys are overlaid.
func Merge(base, patch *ObjectPayload) *ObjectPayload {
	out := &ObjectPayload{
		Name: base.Name,
		Data: maps.Clone(base.Data),
	}

	if patch.Name != "" {
		out.Name = patch.Name
	}

	if out.Data == nil {
		out.Data = Data{}
	}

	maps.Copy(out.Data, patch.Data)

	return out
}
