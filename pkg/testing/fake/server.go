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

// Package fake provides an in-memory stand in for the objects service so
// the workflow can be exercised without network access.  It mimics the
// public demo service: create returns createdAt, updates return updatedAt,
// patch merges and delete answers with a message.
package fake

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/unikorn-cloud/objects/pkg/constants"
	"github.com/unikorn-cloud/objects/pkg/objects"

	"k8s.io/utils/ptr"
)

const timestampFormat = "2006-01-02T15:04:05.000-07:00"

// Server is a fake objects service.
type Server struct {
	lock sync.Mutex

	// objects is keyed by identifier.
	objects map[objects.Identifier]*objects.Object

	// order preserves creation order for listing.
	order []objects.Identifier

	// faults forces a status code for the next request with the given method.
	faults map[string]int

	// omitCreateID strips the identifier from create responses.
	omitCreateID bool

	// replaceOnPatch makes patch behave like put, to test merge detection.
	replaceOnPatch bool

	// requests records "METHOD path" of every request in arrival order.
	requests []string
}

// New returns an empty fake service.
func New() *Server {
	return &Server{
		objects: map[objects.Identifier]*objects.Object{},
		faults:  map[string]int{},
	}
}

// NewTestServer starts a fake service on a loopback listener.
func NewTestServer() (*Server, *httptest.Server) {
	s := New()

	return s, httptest.NewServer(s.Handler())
}

// Handler returns the routes of the service.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(s.record)
	router.Use(s.inject)

	router.Get(constants.CollectionPath, s.list)
	router.Post(constants.CollectionPath, s.create)
	router.Get(constants.CollectionPath+"/{id}", s.get)
	router.Put(constants.CollectionPath+"/{id}", s.update)
	router.Patch(constants.CollectionPath+"/{id}", s.patch)
	router.Delete(constants.CollectionPath+"/{id}", s.delete)

	return router
}

// Seed adds objects as if they pre-existed.
func (s *Server) Seed(in ...objects.Object) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for i := range in {
		object := in[i]

		if object.ID.IsEmpty() {
			object.ID = objects.Identifier(uuid.NewString())
		}

		s.objects[object.ID] = &object
		s.order = append(s.order, object.ID)
	}
}

// Fail makes the next request with the given method respond with status.
func (s *Server) Fail(method string, status int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.faults[method] = status
}

// OmitCreateIdentifier strips the id from create responses.
func (s *Server) OmitCreateIdentifier(omit bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.omitCreateID = omit
}

// ReplaceOnPatch makes patch discard fields that are not sent.
func (s *Server) ReplaceOnPatch(replace bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.replaceOnPatch = replace
}

// Requests returns the requests seen so far.
func (s *Server) Requests() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	return slices.Clone(s.requests)
}

// Lookup returns a copy of a stored object.
func (s *Server) Lookup(id objects.Identifier) (*objects.Object, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	object, ok := s.objects[id]
	if !ok {
		return nil, false
	}

	return clone(object), true
}

// Len returns the number of stored objects.
func (s *Server) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.objects)
}

func clone(in *objects.Object) *objects.Object {
	out := *in
	out.Data = maps.Clone(in.Data)

	return &out
}

func now() *string {
	return ptr.To(time.Now().UTC().Format(timestampFormat))
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		status, ok := s.faults[r.Method]
		delete(s.faults, r.Method)
		s.lock.Unlock()

		if ok {
			writeJSON(w, status, &objects.Error{Error: fmt.Sprintf("injected fault: %s", http.StatusText(status))})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func notFound(w http.ResponseWriter, id objects.Identifier) {
	writeJSON(w, http.StatusNotFound, &objects.Error{Error: fmt.Sprintf("Object with id=%s was not found.", id)})
}

func readPayload(w http.ResponseWriter, r *http.Request) (*objects.ObjectPayload, bool) {
	var payload objects.ObjectPayload

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, &objects.Error{Error: "400 Bad Request. If you are trying to create or update the data, potential issue is that you are sending incorrect body json or it is missing at all."})
		return nil, false
	}

	return &payload, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make([]*objects.Object, 0, len(s.order))

	for _, id := range s.order {
		if object, ok := s.objects[id]; ok {
			out = append(out, object)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	object := &objects.Object{
		ID:        objects.Identifier(uuid.NewString()),
		Name:      payload.Name,
		Data:      payload.Data,
		CreatedAt: now(),
	}

	s.objects[object.ID] = object
	s.order = append(s.order, object.ID)

	if s.omitCreateID {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":      object.Name,
			"data":      object.Data,
			"createdAt": object.CreatedAt,
		})

		return
	}

	writeJSON(w, http.StatusOK, object)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := objects.Identifier(chi.URLParam(r, "id"))

	s.lock.Lock()
	defer s.lock.Unlock()

	object, ok := s.objects[id]
	if !ok {
		notFound(w, id)
		return
	}

	writeJSON(w, http.StatusOK, object)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := objects.Identifier(chi.URLParam(r, "id"))

	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	object, ok := s.objects[id]
	if !ok {
		notFound(w, id)
		return
	}

	object.Name = payload.Name
	object.Data = payload.Data
	object.UpdatedAt = now()

	writeJSON(w, http.StatusOK, &objects.Object{
		ID:        object.ID,
		Name:      object.Name,
		Data:      object.Data,
		UpdatedAt: object.UpdatedAt,
	})
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	id := objects.Identifier(chi.URLParam(r, "id"))

	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	object, ok := s.objects[id]
	if !ok {
		notFound(w, id)
		return
	}

	base := &objects.ObjectPayload{
		Name: object.Name,
		Data: object.Data,
	}

	if s.replaceOnPatch {
		base = &objects.ObjectPayload{}
	}

	merged := objects.Merge(base, payload)

	object.Name = merged.Name
	object.Data = merged.Data
	object.UpdatedAt = now()

	writeJSON(w, http.StatusOK, &objects.Object{
		ID:        object.ID,
		Name:      object.Name,
		Data:      object.Data,
		UpdatedAt: object.UpdatedAt,
	})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := objects.Identifier(chi.URLParam(r, "id"))

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.objects[id]; !ok {
		notFound(w, id)
		return
	}

	delete(s.objects, id)

	s.order = slices.DeleteFunc(s.order, func(x objects.Identifier) bool {
		return x == id
	})

	writeJSON(w, http.StatusOK, &objects.DeleteResponse{Message: fmt.Sprintf("Object with id = %s has been deleted.", id)})
}
