// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package extraction

import "fmt"

// Reason classifies why an extraction attempt failed.
type Reason string

const (
	// ReasonProvider covers transport and model-side failures.
	ReasonProvider Reason = "provider"

	// ReasonMalformed means the model replied but its output could
	// not be parsed into shipment drafts.
	ReasonMalformed Reason = "malformed"
)

// Error is returned by Extractor.Extract for any failure.
type Error struct {
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
