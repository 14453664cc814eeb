// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// New creates a CumulusError for the given code. Details is free-form
// context appended to the canonical message.
func New(code ErrorCode, details string) *CumulusError {
	def, ok := errorDefinitions[code]
	if !ok {
		return &CumulusError{
			Code:       code,
			Domain:     DomainMisc,
			Message:    "Unknown error",
			Details:    details,
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &CumulusError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
	}
}

// Wrap converts an arbitrary error into a CumulusError with the given
// code. An error that already is a CumulusError passes through
// unchanged so the original code survives layering.
func Wrap(err error, code ErrorCode) *CumulusError {
	if err == nil {
		return nil
	}
	var ce *CumulusError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(code, err.Error())
}

// WithMetadata attaches a key/value pair and returns the error for
// chaining.
func (e *CumulusError) WithMetadata(key, value string) *CumulusError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

func (e *CumulusError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s-%d] %s: %s", e.Domain, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s-%d] %s", e.Domain, e.Code, e.Message)
}

// Is reports whether err carries the given error code.
func Is(err error, code ErrorCode) bool {
	var ce *CumulusError
	if stderrors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsNotFound reports whether err is a provider not-found condition.
func IsNotFound(err error) bool {
	return Is(err, ResourceNotFound) || Is(err, OperationNotFound)
}

// HTTPStatusCode extracts the HTTP status for an error, defaulting to
// 500 for errors outside the taxonomy.
func HTTPStatusCode(err error) int {
	var ce *CumulusError
	if stderrors.As(err, &ce) {
		return ce.HTTPStatus
	}
	return http.StatusInternalServerError
}
