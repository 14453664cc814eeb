// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package endpointgroup wraps the generic resource handle with the
// network-endpoint-group verbs: attach, detach and list endpoints.
package endpointgroup

import (
	"context"
	"net/http"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/errors"
)

// Endpoint identifies one network endpoint in a group.
type Endpoint struct {
	Instance  string `json:"instance,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	Port      int    `json:"port,omitempty"`
}

// Config describes a provider-side network endpoint group.
type Config struct {
	Network     string
	Subnetwork  string
	DefaultPort int
	Description string
}

// Group delegates to a generic resource handle.
type Group struct {
	res *compute.Resource
}

func New(scope *compute.Scope, name string) *Group {
	return &Group{res: scope.Resource(constants.CollectionEndpointGroups, name)}
}

func (g *Group) Name() string { return g.res.Name() }

// Resource exposes the underlying generic handle.
func (g *Group) Resource() *compute.Resource { return g.res }

func (g *Group) Create(ctx context.Context, cfg Config) (*compute.Operation, error) {
	if cfg.Network == "" {
		return nil, errors.New(errors.ResourceInvalidConfig, "endpoint group network is required")
	}

	meta := map[string]interface{}{
		"network": cfg.Network,
	}
	if cfg.Subnetwork != "" {
		meta["subnetwork"] = cfg.Subnetwork
	}
	if cfg.DefaultPort > 0 {
		meta["defaultPort"] = cfg.DefaultPort
	}
	if cfg.Description != "" {
		meta["description"] = cfg.Description
	}

	_, op, err := g.res.Create(ctx, meta)
	return op, err
}

func (g *Group) Get(ctx context.Context) (map[string]interface{}, error) {
	return g.res.GetMetadata(ctx)
}

func (g *Group) Exists(ctx context.Context) (bool, error) {
	return g.res.Exists(ctx)
}

func (g *Group) Delete(ctx context.Context) (*compute.Operation, error) {
	return g.res.Delete(ctx)
}

// AttachEndpoints adds endpoints to the group. The returned operation
// tracks the provider-side mutation.
func (g *Group) AttachEndpoints(ctx context.Context, endpoints []Endpoint) (*compute.Operation, error) {
	if len(endpoints) == 0 {
		return nil, errors.New(errors.ResourceInvalidConfig, "no endpoints to attach")
	}
	return g.res.InvokeOperation(ctx, "attachEndpoints", endpointsBody(endpoints))
}

// DetachEndpoints removes endpoints from the group.
func (g *Group) DetachEndpoints(ctx context.Context, endpoints []Endpoint) (*compute.Operation, error) {
	if len(endpoints) == 0 {
		return nil, errors.New(errors.ResourceInvalidConfig, "no endpoints to detach")
	}
	return g.res.InvokeOperation(ctx, "detachEndpoints", endpointsBody(endpoints))
}

// ListEndpoints fetches the group's current endpoint membership.
func (g *Group) ListEndpoints(ctx context.Context) ([]Endpoint, error) {
	var out struct {
		Items []Endpoint `json:"items"`
	}
	if err := g.res.Invoke(ctx, http.MethodGet, "listEndpoints", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func endpointsBody(endpoints []Endpoint) map[string]interface{} {
	return map[string]interface{}{"networkEndpoints": endpoints}
}
