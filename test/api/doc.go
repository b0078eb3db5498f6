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

// Package api provides integration test utilities for the objects API.
//
// # Separate Client Implementation
//
// This package intentionally maintains a separate HTTP client (APIClient)
// working on raw JSON maps, instead of reusing the typed session in
// pkg/client.  The suites drive the service with both, so a behaviour the
// typed client hides (a renamed field, a number turned into a string) still
// shows up as a failure here.
//
// # Targets
//
// The suites run against API_BASE_URL when it is set, e.g. the public
// service at https://api.restful-api.dev.  When it is not set they run
// against the in-memory fake in pkg/testing/fake, so they are usable
// without network access.
package api
