/*
 * Copyright 2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainTransport Domain = "TRANSPORT"
	DomainHealth    Domain = "HEALTH"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainMisc      Domain = "MISC"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

type CumulusError struct {
	Code    ErrorCode `json:"code"`
	Domain  Domain    `json:"domain"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`

	HTTPStatus int `json:"-"`

	// Metadata carries contextual information that doesn't fit the
	// standard fields: API responses include it on serialization, and
	// the operation error list travels here as well.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1200-1299: Transport errors
// 1300-1399: Resource errors
// 1400-1499: Operation errors
// 1500-1599: Health check
// 1600-1699: Lifecycle management
// 1700-1799: Metadata sync
// 1800-1899: Cumulus errors
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound         = 1000 + iota // Config file not found
	ConfigInvalid                        // Invalid config format
	ConfigLoadFailed                     // Failed to load config
	ConfigWriteFailed                    // Failed to write config
	ConfigValidationFailed               // Config validation failed
	ConfigParseError                     // Error parsing config
)

const (
	// Server Errors (1100-1199)
	ServerStart             = 1100 + iota // Failed to start server
	ServerShutdown                        // Error during shutdown
	ServerBind                            // Failed to bind port
	ServerRequestValidation               // Request validation failed
	ServerInternalError                   // Internal server error
	ServerBadRequest                      // Bad request error
)

const (
	// Transport Errors (1200-1299)
	TransportRequestFailed  = 1200 + iota // Transport request failed
	TransportTimeout                      // Transport request timed out
	TransportAuthFailed                   // Authentication rejected by provider
	TransportResponseDecode               // Failed to decode provider response
)

const (
	// Health Check (1500-1599)
	HealthCheckFailed  = 1500 + iota // Health check failed
	HealthCheckTimeout               // Health check timed out
	HealthCheckClient                // Client error
)

const (
	// Lifecycle Management (1600-1699)
	LifecyclePID      = 1600 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleSignal                 // Signal handling error
	LifecycleDaemon                 // Daemon operation failed
)

const (
	// Cumulus Errors (1800-1899)
	CumulusMisc = 1800 + iota // Miscellaneous program error
	LoggerError               // Logger error
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	// Configuration errors
	ConfigNotFound: {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:  {"Invalid configuration format", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed: {
		"Failed to load configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigWriteFailed: {
		"Failed to write configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigValidationFailed: {
		"Configuration validation failed",
		DomainConfig,
		http.StatusBadRequest,
	},
	ConfigParseError: {
		"Error parsing configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},

	// Server errors
	ServerStart: {
		"Failed to start server",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerShutdown: {
		"Error during server shutdown",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBind:              {"Failed to bind server port", DomainServer, http.StatusInternalServerError},
	ServerRequestValidation: {"Request validation failed", DomainServer, http.StatusBadRequest},
	ServerInternalError: {
		"Internal server error",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerBadRequest: {
		"Bad request error",
		DomainServer,
		http.StatusBadRequest,
	},

	// Transport errors
	TransportRequestFailed: {
		"Transport request failed",
		DomainTransport,
		http.StatusBadGateway,
	},
	TransportTimeout: {
		"Transport request timed out",
		DomainTransport,
		http.StatusGatewayTimeout,
	},
	TransportAuthFailed: {
		"Authentication rejected by provider",
		DomainTransport,
		http.StatusUnauthorized,
	},
	TransportResponseDecode: {
		"Failed to decode provider response",
		DomainTransport,
		http.StatusInternalServerError,
	},

	// Health check errors
	HealthCheckFailed:  {"Health check failed", DomainHealth, http.StatusServiceUnavailable},
	HealthCheckTimeout: {"Health check timed out", DomainHealth, http.StatusGatewayTimeout},
	HealthCheckClient: {
		"Health check client error",
		DomainHealth,
		http.StatusInternalServerError,
	},

	// Lifecycle errors
	LifecyclePID: {
		"PID file operation failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleShutdown: {
		"Error during shutdown process",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleSignal: {"Signal handling error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleDaemon: {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},

	// Cumulus errors
	CumulusMisc: {"Miscellaneous program error", DomainMisc, http.StatusInternalServerError},
	LoggerError: {"Logger error", DomainMisc, http.StatusInternalServerError},
}
