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

var _ = Describe("Object Semantics", func() {
	Context("When an object is created", func() {
		DescribeTable("should read back exactly what was posted",
			func(payload map[string]interface{}) {
				_, objectID := api.CreateObjectWithCleanup(ctx, client, payload)

				resp, err := client.GetObject(ctx, objectID)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				object, err := resp.Object()
				Expect(err).NotTo(HaveOccurred())
				Expect(object["name"]).To(Equal(payload["name"]))

				data, _ := payload["data"].(map[string]interface{})
				api.VerifyData(object, data)
			},
			Entry("the workflow payload", api.NewObjectPayload().Build()),
			Entry("string values only", api.NewObjectPayload().WithUniqueName("tablet").WithData("Generation", "4th").WithData("Capacity", "64 GB").Build()),
			Entry("fractional and integral numbers", api.NewObjectPayload().WithUniqueName("phone").WithData("price", 689.99).WithData("screen size", 7).Build()),
			Entry("a generated device", api.NewObjectPayload().WithRandomDevice().Build()),
		)
	})

	Context("When an object is replaced", func() {
		It("should return the new fields, not the original ones", func() {
			_, objectID := api.CreateObjectWithCleanup(ctx, client, api.NewObjectPayload().Build())

			_, err := client.UpdateObject(ctx, objectID, api.FromPayload(objects.UpdatePayload()).Build())
			Expect(err).NotTo(HaveOccurred())

			resp, err := client.GetObject(ctx, objectID)
			Expect(err).NotTo(HaveOccurred())

			object, err := resp.Object()
			Expect(err).NotTo(HaveOccurred())
			Expect(object["name"]).To(Equal(objects.UpdateName))
			api.VerifyData(object, objects.UpdatePayload().Data)
		})
	})

	Context("When an object is patched", func() {
		It("should change the price and leave the other fields alone", func() {
			if !config.StrictPatch && target.Fake == nil {
				Skip("merge semantics of the live service are only checked with STRICT_PATCH")
			}

			_, objectID := api.CreateObjectWithCleanup(ctx, client, api.FromPayload(objects.UpdatePayload()).Build())

			_, err := client.PatchObject(ctx, objectID, api.FromPayload(objects.PatchPayload()).Build())
			Expect(err).NotTo(HaveOccurred())

			resp, err := client.GetObject(ctx, objectID)
			Expect(err).NotTo(HaveOccurred())

			object, err := resp.Object()
			Expect(err).NotTo(HaveOccurred())
			Expect(object["name"]).To(Equal(objects.UpdateName))
			api.VerifyData(object, objects.Merge(objects.UpdatePayload(), objects.PatchPayload()).Data)
		})
	})

	Context("When objects are deleted", func() {
		It("should make every deleted identifier return 404", func() {
			var ids []string

			for range 3 {
				object, err := client.CreateObject(ctx, api.NewObjectPayload().WithUniqueName("finality").Build())
				Expect(err).NotTo(HaveOccurred())

				ids = append(ids, api.ObjectID(object))
			}

			for _, id := range ids {
				_, err := client.DeleteObject(ctx, id)
				Expect(err).NotTo(HaveOccurred())
			}

			for _, id := range ids {
				api.VerifyGone(ctx, client, id)
			}
		})
	})

	Context("When addressing an object that does not exist", func() {
		It("should return 404 on lookup", func() {
			api.VerifyGone(ctx, client, "non-existent-object-12345")
		})

		It("should return 404 on delete", func() {
			_, err := client.DeleteObject(ctx, "non-existent-object-12345")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("404"), "Error should indicate HTTP 404 Not Found")
		})
	})

	Context("When the service returns a numeric id", func() {
		It("should address the object by its decimal form", func() {
			Expect(api.ObjectID(map[string]interface{}{"id": float64(7)})).To(Equal("7"))
			Expect(api.ObjectID(map[string]interface{}{"id": "ff80818193"})).To(Equal("ff80818193"))
		})
	})
})
