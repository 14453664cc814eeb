// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package compute

import (
	"context"
	"net/http"
	"sync"

	"github.com/stratastor/cumulus/pkg/errors"
)

// Resource is a client-side reference to a named provider-side object.
// It holds no authoritative state; metadata is a cache valid only
// immediately after a fetch or mutation response.
type Resource struct {
	scope      *Scope
	collection string
	name       string

	mu       sync.Mutex
	metadata map[string]interface{}
}

// GetOptions controls Get behavior.
type GetOptions struct {
	// AutoCreate creates the resource with Config when the fetch
	// reports not-found, instead of failing.
	AutoCreate bool
	Config     map[string]interface{}
}

func (r *Resource) Name() string { return r.name }

func (r *Resource) Collection() string { return r.collection }

func (r *Resource) Scope() *Scope { return r.scope }

// SelfLink returns the provider path of this resource.
func (r *Resource) SelfLink() string {
	return r.scope.memberPath(r.collection, r.name)
}

// Metadata returns a copy of the cached metadata. May be nil if the
// resource was never fetched or mutated through this handle.
func (r *Resource) Metadata() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMetadata(r.metadata)
}

// Create constructs the provider-side object from config. The handle's
// name is merged into the payload so callers need not repeat it. The
// returned operation tracks the provider-side mutation; Create itself
// does not block on completion.
func (r *Resource) Create(ctx context.Context, config map[string]interface{}) (*Resource, *Operation, error) {
	if r.name == "" {
		return nil, nil, errors.New(errors.ResourceInvalidName, "resource name is empty")
	}

	body := copyMetadata(config)
	if body == nil {
		body = make(map[string]interface{})
	}
	body["name"] = r.name

	var opRes operationResource
	err := r.scope.do(ctx, http.MethodPost, r.scope.collectionPath(r.collection), nil, body, &opRes)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	r.metadata = body
	r.mu.Unlock()

	return r, newOperation(r.scope, opRes), nil
}

// Get fetches the resource metadata. With AutoCreate set, a missing
// resource is created with opts.Config and the handle is returned
// instead of the not-found error; exactly one create call is issued.
func (r *Resource) Get(ctx context.Context, opts *GetOptions) (*Resource, error) {
	_, err := r.GetMetadata(ctx)
	if err == nil {
		return r, nil
	}
	if opts != nil && opts.AutoCreate && errors.IsNotFound(err) {
		created, _, cerr := r.Create(ctx, opts.Config)
		if cerr != nil {
			return nil, cerr
		}
		return created, nil
	}
	return nil, err
}

// Exists performs a fetch and translates not-found into false. Any
// other failure propagates unchanged.
func (r *Resource) Exists(ctx context.Context) (bool, error) {
	_, err := r.GetMetadata(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetMetadata fetches the current provider-side metadata and refreshes
// the local cache.
func (r *Resource) GetMetadata(ctx context.Context) (map[string]interface{}, error) {
	var meta map[string]interface{}
	err := r.scope.do(ctx, http.MethodGet, r.SelfLink(), nil, nil, &meta)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.metadata = meta
	r.mu.Unlock()

	return copyMetadata(meta), nil
}

// Delete issues the provider-side deletion and returns immediately
// with the tracking operation. The caller decides whether to wait.
func (r *Resource) Delete(ctx context.Context) (*Operation, error) {
	var opRes operationResource
	err := r.scope.do(ctx, http.MethodDelete, r.SelfLink(), nil, nil, &opRes)
	if err != nil {
		return nil, err
	}
	return newOperation(r.scope, opRes), nil
}

// SetMetadata issues a partial update. The resource name and zone are
// merged into the patch before sending, so a caller-supplied patch
// never has to repeat the identifiers.
func (r *Resource) SetMetadata(ctx context.Context, patch map[string]interface{}) (*Operation, error) {
	body := copyMetadata(patch)
	if body == nil {
		body = make(map[string]interface{})
	}
	body["name"] = r.name
	body["zone"] = r.scope.Zone()

	var opRes operationResource
	err := r.scope.do(ctx, http.MethodPatch, r.SelfLink(), nil, body, &opRes)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.metadata == nil {
		r.metadata = make(map[string]interface{})
	}
	for k, v := range body {
		r.metadata[k] = v
	}
	r.mu.Unlock()

	return newOperation(r.scope, opRes), nil
}

// Invoke calls a resource-scoped custom verb, e.g.
// POST <member>/attachEndpoints.
func (r *Resource) Invoke(ctx context.Context, method, verb string, body, result interface{}) error {
	return r.scope.do(ctx, method, r.SelfLink()+"/"+verb, nil, body, result)
}

// InvokeOperation calls a mutating custom verb and decodes the
// operation envelope the provider returns.
func (r *Resource) InvokeOperation(ctx context.Context, verb string, body interface{}) (*Operation, error) {
	var opRes operationResource
	if err := r.Invoke(ctx, http.MethodPost, verb, body, &opRes); err != nil {
		return nil, err
	}
	return newOperation(r.scope, opRes), nil
}

func copyMetadata(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
