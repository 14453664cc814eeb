// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"maps"
	"net/http"
)

const (
	DomainResource  Domain = "RESOURCE"
	DomainOperation Domain = "OPERATION"
	DomainSync      Domain = "SYNC"
)

// Resource error codes (1300-1399)
const (
	ResourceNotFound        = 1300 + iota // Resource not found at the provider
	ResourceConflict                      // Resource with the same name already exists
	ResourceInvalidName                   // Invalid resource name
	ResourceInvalidConfig                 // Invalid resource configuration
	ResourceMetadataInvalid               // Provider returned unusable metadata
)

// Operation error codes (1400-1499)
const (
	OperationFailed        = 1400 + iota // Operation reached DONE with errors
	OperationWaitTimeout                 // Wait deadline elapsed before DONE
	OperationPollFailed                  // Status poll failed
	OperationUnknownStatus               // Provider returned an unknown status
	OperationNotFound                    // Operation not found at the provider
)

// Metadata sync error codes (1700-1799)
const (
	SyncPolicyInvalid    = 1700 + iota // Invalid sync policy
	SyncPolicyNotFound                 // Sync policy not found
	SyncPolicyExists                   // Sync policy already exists
	SyncStateReadFailed                // Failed to read sync state file
	SyncStateWriteFailed               // Failed to write sync state file
	SyncSchedulerError                 // Scheduler operation failed
)

func init() {
	computeErrorDefinitions := map[ErrorCode]struct {
		message    string
		domain     Domain
		httpStatus int
	}{
		// Resource errors
		ResourceNotFound: {
			"Resource not found",
			DomainResource,
			http.StatusNotFound,
		},
		ResourceConflict: {
			"Resource already exists",
			DomainResource,
			http.StatusConflict,
		},
		ResourceInvalidName: {
			"Invalid resource name",
			DomainResource,
			http.StatusBadRequest,
		},
		ResourceInvalidConfig: {
			"Invalid resource configuration",
			DomainResource,
			http.StatusBadRequest,
		},
		ResourceMetadataInvalid: {
			"Provider returned unusable metadata",
			DomainResource,
			http.StatusInternalServerError,
		},

		// Operation errors
		OperationFailed: {
			"Operation completed with errors",
			DomainOperation,
			http.StatusInternalServerError,
		},
		OperationWaitTimeout: {
			"Timed out waiting for operation",
			DomainOperation,
			http.StatusGatewayTimeout,
		},
		OperationPollFailed: {
			"Failed to poll operation status",
			DomainOperation,
			http.StatusInternalServerError,
		},
		OperationUnknownStatus: {
			"Unknown operation status",
			DomainOperation,
			http.StatusInternalServerError,
		},
		OperationNotFound: {
			"Operation not found",
			DomainOperation,
			http.StatusNotFound,
		},

		// Metadata sync errors
		SyncPolicyInvalid: {
			"Invalid sync policy",
			DomainSync,
			http.StatusBadRequest,
		},
		SyncPolicyNotFound: {
			"Sync policy not found",
			DomainSync,
			http.StatusNotFound,
		},
		SyncPolicyExists: {
			"Sync policy already exists",
			DomainSync,
			http.StatusConflict,
		},
		SyncStateReadFailed: {
			"Failed to read sync state file",
			DomainSync,
			http.StatusInternalServerError,
		},
		SyncStateWriteFailed: {
			"Failed to write sync state file",
			DomainSync,
			http.StatusInternalServerError,
		},
		SyncSchedulerError: {
			"Scheduler operation failed",
			DomainSync,
			http.StatusInternalServerError,
		},
	}

	maps.Copy(errorDefinitions, computeErrorDefinitions)
}
