// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// opError mirrors the provider wire format for one failed sub-operation.
type opError struct {
	Code     string `json:"code"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

type operationState struct {
	name          string
	operationType string
	targetLink    string
	created       time.Time
	errs          []opError
}

// Store is the in-memory provider state behind the mock API. Mutations
// apply immediately; the minted operations report PENDING, RUNNING and
// DONE purely as a function of elapsed time against the tick, which is
// enough to exercise client-side polling.
type Store struct {
	mu   sync.Mutex
	tick time.Duration

	hold     bool
	nextErrs []opError

	resources  map[string]map[string]map[string]interface{}
	operations map[string]*operationState
}

// DefaultOperationTick is the time an operation spends in each
// non-terminal state.
const DefaultOperationTick = 50 * time.Millisecond

func NewStore(tick time.Duration) *Store {
	if tick <= 0 {
		tick = DefaultOperationTick
	}
	return &Store{
		tick:       tick,
		resources:  make(map[string]map[string]map[string]interface{}),
		operations: make(map[string]*operationState),
	}
}

// SetHold freezes all operations in PENDING while true. Used to test
// wait timeouts.
func (s *Store) SetHold(hold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = hold
}

// FailNextOperation makes the next minted operation finish DONE with
// the given error records.
func (s *Store) FailNextOperation(code, location, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErrs = append(s.nextErrs, opError{Code: code, Location: location, Message: message})
}

func (s *Store) getResource(collection, name string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.resources[collection][name]
	if !ok {
		return nil, false
	}
	return copyMeta(meta), true
}

func (s *Store) putResource(collection, name string, meta map[string]interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.resources[collection][name]; exists {
		return false
	}
	if s.resources[collection] == nil {
		s.resources[collection] = make(map[string]map[string]interface{})
	}
	s.resources[collection][name] = copyMeta(meta)
	return true
}

func (s *Store) patchResource(collection, name string, patch map[string]interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.resources[collection][name]
	if !ok {
		return false
	}
	for k, v := range patch {
		meta[k] = v
	}
	return true
}

func (s *Store) deleteResource(collection, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resources[collection][name]; !ok {
		return false
	}
	delete(s.resources[collection], name)
	return true
}

func (s *Store) listResources(collection string) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]map[string]interface{}, 0, len(s.resources[collection]))
	for _, meta := range s.resources[collection] {
		items = append(items, copyMeta(meta))
	}
	return items
}

// newOperation mints an operation for a mutation and returns its wire
// representation.
func (s *Store) newOperation(operationType, targetLink string) map[string]interface{} {
	s.mu.Lock()
	op := &operationState{
		name:          "operation-" + uuid.New().String(),
		operationType: operationType,
		targetLink:    targetLink,
		created:       time.Now(),
		errs:          s.nextErrs,
	}
	s.nextErrs = nil
	s.operations[op.name] = op
	s.mu.Unlock()

	return s.operationSnapshot(op)
}

func (s *Store) getOperation(name string) (map[string]interface{}, bool) {
	s.mu.Lock()
	op, ok := s.operations[name]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return s.operationSnapshot(op), true
}

func (s *Store) operationSnapshot(op *operationState) map[string]interface{} {
	s.mu.Lock()
	hold := s.hold
	tick := s.tick
	s.mu.Unlock()

	status := "DONE"
	elapsed := time.Since(op.created)
	switch {
	case hold || elapsed < tick:
		status = "PENDING"
	case elapsed < 2*tick:
		status = "RUNNING"
	}

	snap := map[string]interface{}{
		"name":          op.name,
		"status":        status,
		"operationType": op.operationType,
		"targetLink":    op.targetLink,
	}
	if status == "DONE" && len(op.errs) > 0 {
		snap["error"] = map[string]interface{}{"errors": op.errs}
	}
	return snap
}

func copyMeta(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
