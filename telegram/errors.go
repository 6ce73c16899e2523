// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the Bot API.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *telegram.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.ErrorCode == 429 { ... }
//	}
type APIError struct {
	// ErrorCode is the Bot API error code (matches HTTP status for
	// most errors, e.g., 400, 403, 429).
	ErrorCode int `json:"error_code"`
	// Description is the human-readable error description.
	Description string `json:"description"`
	// RetryAfter is the suggested wait in seconds for 429 responses,
	// zero otherwise.
	RetryAfter int `json:"-"`
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram: %d: %s (retry after %ds)", e.ErrorCode, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram: %d: %s", e.ErrorCode, e.Description)
}

// IsAPIError checks whether err is a *APIError with the given error code.
func IsAPIError(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == code
	}
	return false
}
