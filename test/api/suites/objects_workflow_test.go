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

//nolint:testpackage,revive // test package in suites is standard for these tests
package suites

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/objects/pkg/objects"
	"github.com/unikorn-cloud/objects/test/api"
)

var _ = Describe("Objects Workflow", Ordered, func() {
	var objectID string

	AfterAll(func() {
		if objectID == "" {
			return
		}

		// Only does anything if a step failed before the delete.
		resp, err := client.GetObject(ctx, objectID)
		if err == nil && resp.StatusCode == http.StatusOK {
			_, _ = client.DeleteObject(ctx, objectID)
		}
	})

	It("should list all objects", func() {
		resp, err := client.ListObjects(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		list, err := resp.JSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(BeAssignableToTypeOf([]interface{}{}), "the collection must be an array")

		GinkgoWriter.Printf("All objects: %d\n", len(list.([]interface{}))) //nolint:forcetypeassert // asserted above
	})

	It("should add an object", func() {
		payload := api.NewObjectPayload().Build()

		object, err := client.CreateObject(ctx, payload)
		Expect(err).NotTo(HaveOccurred(), "Should create the object (HTTP 200)")

		objectID = api.ObjectID(object)

		GinkgoWriter.Printf("Saved Object ID: %s\n", objectID)
	})

	It("should get the added object by ID", func() {
		Expect(objectID).NotTo(BeEmpty(), "object ID is undefined, cannot proceed with GET request")

		resp, err := client.GetObject(ctx, objectID)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		object, err := resp.Object()
		Expect(err).NotTo(HaveOccurred())

		GinkgoWriter.Printf("Fetched Object: %v\n", object)

		Expect(object["id"]).To(Equal(objectID))
		Expect(object["name"]).To(Equal(objects.CreateName))
		Expect(object).To(HaveKeyWithValue("data", HaveKeyWithValue("year", BeNumerically("==", 2019))))
		Expect(object).To(HaveKeyWithValue("data", HaveKeyWithValue("price", BeNumerically("==", 1849.99))))
		api.VerifyData(object, objects.CreatePayload().Data)
	})

	It("should update the object using PUT", func() {
		Expect(objectID).NotTo(BeEmpty(), "object ID is undefined, cannot proceed with PUT request")

		payload := api.FromPayload(objects.UpdatePayload()).Build()

		updated, err := client.UpdateObject(ctx, objectID, payload)
		Expect(err).NotTo(HaveOccurred())

		GinkgoWriter.Printf("Updated Object: %v\n", updated)

		Expect(updated["id"]).To(Equal(objectID))
		Expect(updated["name"]).To(Equal(objects.UpdateName))
		api.VerifyData(updated, objects.UpdatePayload().Data)
	})

	It("should patch the object price", func() {
		Expect(objectID).NotTo(BeEmpty(), "object ID is undefined, cannot proceed with PATCH request")

		payload := api.FromPayload(objects.PatchPayload()).Build()

		patched, err := client.PatchObject(ctx, objectID, payload)
		Expect(err).NotTo(HaveOccurred())

		GinkgoWriter.Printf("Patched Object: %v\n", patched)

		Expect(patched["id"]).To(Equal(objectID))
		Expect(patched).To(HaveKeyWithValue("data", HaveKeyWithValue("price", BeNumerically("==", objects.PatchPrice))))
	})

	It("should delete the object and confirm it no longer exists", func() {
		Expect(objectID).NotTo(BeEmpty(), "object ID is undefined, cannot proceed with DELETE request")

		deleted, err := client.DeleteObject(ctx, objectID)
		Expect(err).NotTo(HaveOccurred())

		GinkgoWriter.Printf("Deleted Response: %v\n", deleted)

		api.VerifyGone(ctx, client, objectID)
	})
})
