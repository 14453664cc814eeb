// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package autoscaler wraps the generic resource handle with the
// autoscaler resource type and its scaling policy vocabulary.
package autoscaler

import (
	"context"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/compute"
	"github.com/stratastor/cumulus/pkg/errors"
)

// Policy is the autoscaler scaling policy. Zero-valued fields are
// omitted from the payload so provider defaults apply.
type Policy struct {
	CoolDown    int     `json:"coolDown,omitempty"`    // seconds before scaling decisions settle
	CPU         float64 `json:"cpu,omitempty"`         // target CPU utilization, 0..1
	LoadBalance float64 `json:"loadBalance,omitempty"` // target load balancer utilization, 0..1
	MinReplicas int     `json:"minReplicas,omitempty"`
	MaxReplicas int     `json:"maxReplicas,omitempty"`
}

// Config describes a provider-side autoscaler.
type Config struct {
	Description string
	Target      string // instance group the autoscaler manages
	Policy      Policy
}

// Autoscaler delegates to a generic resource handle; it adds only the
// type-specific payload shaping.
type Autoscaler struct {
	res *compute.Resource
}

func New(scope *compute.Scope, name string) *Autoscaler {
	return &Autoscaler{res: scope.Resource(constants.CollectionAutoscalers, name)}
}

func (a *Autoscaler) Name() string { return a.res.Name() }

// Resource exposes the underlying generic handle.
func (a *Autoscaler) Resource() *compute.Resource { return a.res }

// Create constructs the autoscaler at the provider and returns the
// tracking operation without blocking on completion.
func (a *Autoscaler) Create(ctx context.Context, cfg Config) (*compute.Operation, error) {
	if cfg.Target == "" {
		return nil, errors.New(errors.ResourceInvalidConfig, "autoscaler target is required")
	}
	if cfg.Policy.MaxReplicas > 0 && cfg.Policy.MinReplicas > cfg.Policy.MaxReplicas {
		return nil, errors.New(errors.ResourceInvalidConfig, "minReplicas exceeds maxReplicas")
	}

	meta := map[string]interface{}{
		"target":            cfg.Target,
		"autoscalingPolicy": policyPayload(cfg.Policy),
	}
	if cfg.Description != "" {
		meta["description"] = cfg.Description
	}

	_, op, err := a.res.Create(ctx, meta)
	return op, err
}

func (a *Autoscaler) Get(ctx context.Context) (map[string]interface{}, error) {
	return a.res.GetMetadata(ctx)
}

func (a *Autoscaler) Exists(ctx context.Context) (bool, error) {
	return a.res.Exists(ctx)
}

func (a *Autoscaler) Delete(ctx context.Context) (*compute.Operation, error) {
	return a.res.Delete(ctx)
}

// SetPolicy patches only the scaling policy; the handle fills in the
// identifiers.
func (a *Autoscaler) SetPolicy(ctx context.Context, policy Policy) (*compute.Operation, error) {
	return a.res.SetMetadata(ctx, map[string]interface{}{
		"autoscalingPolicy": policyPayload(policy),
	})
}

func policyPayload(p Policy) map[string]interface{} {
	payload := make(map[string]interface{})
	if p.CoolDown > 0 {
		payload["coolDown"] = p.CoolDown
	}
	if p.CPU > 0 {
		payload["cpu"] = p.CPU
	}
	if p.LoadBalance > 0 {
		payload["loadBalance"] = p.LoadBalance
	}
	if p.MinReplicas > 0 {
		payload["minReplicas"] = p.MinReplicas
	}
	if p.MaxReplicas > 0 {
		payload["maxReplicas"] = p.MaxReplicas
	}
	return payload
}
