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

const (
	// CreateName is the name of the object created by the workflow.
	CreateName = "Apple MacBook Pro 17"

	// UpdateName replaces CreateName on full update.
	UpdateName = "Apple MacBook Pro 17 Updated"

	// PatchPrice is the only value changed by the partial update.
	PatchPrice = 2099.99
)

// CreatePayload returns the object sent on create.
func CreatePayload() *ObjectPayload {
	return &ObjectPayload{
		Name: CreateName,
		Data: Data{
			"year":           2019,
			"price":          1849.99,
			"CPU model":      "Intel Core i9",
			"Hard disk size": "1 TB",
		},
	}
}

// UpdatePayload returns the object sent on full update.
func UpdatePayload() *ObjectPayload {
	return &ObjectPayload{
		Name: UpdateName,
		Data: Data{
			"year":           2020,
			"price":          1999.99,
			"CPU model":      "Intel Core i9",
			"Hard disk size": "2 TB",
		},
	}
}

// PatchPayload returns the partial update, only the price changes.
func PatchPayload() *ObjectPayload {
	return &ObjectPayload{
		Data: Data{
			"price": PatchPrice,
		},
	}
}
