// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package compute implements the client core for the StrataCloud
// compute API: a Scope identifying a project/zone, generic resource
// handles, and operation handles that poll provider-side mutations to
// completion. Typed wrappers (autoscaler, endpointgroup) delegate to
// the generic handle instead of reimplementing the verbs.
package compute

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/stratastor/cumulus/internal/constants"
	"github.com/stratastor/cumulus/pkg/errors"
	"github.com/stratastor/cumulus/pkg/httpclient"
)

// DefaultPollInterval is used when neither the scope config nor the
// caller supplies one.
const DefaultPollInterval = 500 * time.Millisecond

// Transport issues a single request against the provider API. 404 and
// 409 must surface as ResourceNotFound and ResourceConflict so the
// handle's Exists/Create translation logic can rely on them.
type Transport interface {
	Do(ctx context.Context, method, path string, query map[string]string, body, result interface{}) error
}

// ScopeConfig configures a project/zone scope.
type ScopeConfig struct {
	Endpoint      string
	Project       string
	Zone          string
	Token         string
	PollInterval  time.Duration
	Timeout       time.Duration
	AllowInsecure bool
	Debug         bool
}

// Scope is a project/zone container. All resource and operation paths
// hang off it, and it carries the default poll interval so the wait
// loop needs no ambient global state.
type Scope struct {
	project      string
	zone         string
	pollInterval time.Duration
	transport    Transport
}

// NewScope builds a scope with a resty-backed transport.
func NewScope(cfg ScopeConfig) (*Scope, error) {
	if cfg.Project == "" || cfg.Zone == "" {
		return nil, errors.New(errors.ConfigValidationFailed, "project and zone are required")
	}
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.ConfigValidationFailed, "provider endpoint is required")
	}

	ccfg := httpclient.NewClientConfig()
	ccfg.BaseURL = cfg.Endpoint
	ccfg.BearerToken = cfg.Token
	ccfg.AllowInsecure = cfg.AllowInsecure
	ccfg.Debug = cfg.Debug
	if cfg.Timeout > 0 {
		ccfg.Timeout = cfg.Timeout
	}

	return NewScopeWithTransport(cfg, &restyTransport{client: httpclient.NewClient(ccfg)}), nil
}

// NewScopeWithTransport builds a scope over a caller-supplied
// transport. Used by tests and by callers with custom auth stacks.
func NewScopeWithTransport(cfg ScopeConfig, t Transport) *Scope {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scope{
		project:      cfg.Project,
		zone:         cfg.Zone,
		pollInterval: interval,
		transport:    t,
	}
}

func (s *Scope) Project() string { return s.project }

func (s *Scope) Zone() string { return s.zone }

// PollInterval returns the scope-level default for operation waits.
func (s *Scope) PollInterval() time.Duration { return s.pollInterval }

// Resource returns a handle for a named resource in a collection. No
// network call is made; the handle is a cheap client-side reference.
func (s *Scope) Resource(collection, name string) *Resource {
	return &Resource{scope: s, collection: collection, name: name}
}

// Operation returns a handle for a provider-assigned operation id.
func (s *Scope) Operation(name string) *Operation {
	return &Operation{scope: s, name: name}
}

// List fetches the member metadata of a collection in this scope.
func (s *Scope) List(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	var out struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := s.do(ctx, http.MethodGet, s.collectionPath(collection), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (s *Scope) basePath() string {
	return fmt.Sprintf("%s/projects/%s/zones/%s", constants.APIBase, s.project, s.zone)
}

func (s *Scope) collectionPath(collection string) string {
	return s.basePath() + "/" + collection
}

func (s *Scope) memberPath(collection, name string) string {
	return s.collectionPath(collection) + "/" + name
}

func (s *Scope) operationPath(name string) string {
	return s.memberPath(constants.CollectionOperations, name)
}

func (s *Scope) do(ctx context.Context, method, path string, query map[string]string, body, result interface{}) error {
	return s.transport.Do(ctx, method, path, query, body, result)
}

// restyTransport adapts pkg/httpclient to the Transport contract and
// translates HTTP status semantics into the error taxonomy.
type restyTransport struct {
	client *httpclient.Client
}

func (t *restyTransport) Do(ctx context.Context, method, path string, query map[string]string, body, result interface{}) error {
	req := t.client.NewRequest(httpclient.RequestConfig{
		Path:        path,
		QueryParams: query,
		Body:        body,
		Result:      result,
		Context:     ctx,
	})

	resp, err := req.Execute(method)
	if err != nil {
		var nerr net.Error
		if stderrors.As(err, &nerr) && nerr.Timeout() {
			return errors.New(errors.TransportTimeout, err.Error()).
				WithMetadata("path", path)
		}
		return errors.Wrap(err, errors.TransportRequestFailed).
			WithMetadata("path", path)
	}

	if resp.IsSuccess() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return errors.New(errors.ResourceNotFound, path)
	case http.StatusConflict:
		return errors.New(errors.ResourceConflict, path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.New(errors.TransportAuthFailed, path).
			WithMetadata("status", resp.Status())
	default:
		return errors.New(errors.TransportRequestFailed, path).
			WithMetadata("status", resp.Status()).
			WithMetadata("body", resp.String())
	}
}
