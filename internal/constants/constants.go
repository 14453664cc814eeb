// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package constants

// Build-time variables set via ldflags
var (
	Version   = "v0.0.1-dev" // Set via -X flag during build
	CommitSHA = "unknown"    // Set via -X flag during build
	BuildTime = "unknown"    // Set via -X flag during build
)

const (
	CumulusVersion     = "v0.0.1"
	CumulusPIDFilePath = "/var/run/cumulus.pid"

	// config
	ConfigFileName    = "cumulus.yml"
	SyncStateFileName = "sync.cumulus.yml"

	// routes
	APIVersion = "v1"
	APIBase    = "/compute/" + APIVersion

	// EndpointHealth is served unversioned by the provider
	EndpointHealth = "/health"

	// Resource collections understood by the mock provider. The client
	// itself is collection-agnostic; these are the ones the wrappers and
	// the mock server speak.
	CollectionAutoscalers    = "autoscalers"
	CollectionInstances      = "instances"
	CollectionEndpointGroups = "networkEndpointGroups"
	CollectionOperations     = "operations"
)
