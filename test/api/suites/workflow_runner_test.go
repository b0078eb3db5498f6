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

	"github.com/unikorn-cloud/objects/pkg/workflow"
)

var _ = Describe("Workflow Runner", func() {
	Context("When running the full workflow", func() {
		It("should pass every step in order", func() {
			options := workflow.NewOptions()
			options.StrictPatch = config.StrictPatch || target.Fake != nil

			report, err := workflow.New(target.NewSession(config), options).Run(ctx)

			GinkgoWriter.Print(report.String())

			Expect(err).NotTo(HaveOccurred())
			Expect(report.Names()).To(Equal(workflow.Steps()))
			Expect(report.Identifier.IsEmpty()).To(BeFalse())

			// Deletion finality holds for the identifier the runner created.
			resp, err := client.GetObject(ctx, report.Identifier.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("When the service misbehaves", func() {
		BeforeEach(func() {
			if target.Fake == nil {
				Skip("fault injection needs the in-memory service")
			}
		})

		It("should stop at the first failing step and clean up", func() {
			target.Fake.Fail(http.MethodPatch, http.StatusInternalServerError)

			report, err := workflow.New(target.NewSession(config), workflow.NewOptions()).Run(ctx)
			Expect(err).To(MatchError(workflow.ErrAssertion))
			Expect(report.Names()).To(Equal(workflow.Steps()[:5]))
			Expect(report.CleanedUp).To(BeTrue())

			resp, err := client.GetObject(ctx, report.Identifier.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("should fail when create returns no identifier", func() {
			target.Fake.OmitCreateIdentifier(true)
			DeferCleanup(target.Fake.OmitCreateIdentifier, false)

			report, err := workflow.New(target.NewSession(config), workflow.NewOptions()).Run(ctx)
			Expect(err).To(MatchError(workflow.ErrAssertion))
			Expect(report.Names()).To(Equal(workflow.Steps()[:2]))
			Expect(report.Identifier.IsEmpty()).To(BeTrue())
		})
	})
})
