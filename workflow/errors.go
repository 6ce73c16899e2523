// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import "errors"

// ErrEmptyInput is returned by Finalize when no images have been
// collected. Recoverable: the session is unchanged.
var ErrEmptyInput = errors.New("workflow: no images collected")

// ErrOutOfRange is returned by index-addressed operations when the
// index names no shipment. Recoverable: nothing is mutated.
var ErrOutOfRange = errors.New("workflow: shipment index out of range")

// ErrWrongPhase is returned when an operation is invoked in a phase
// that does not permit it (Finalize outside Collecting, Refinalize
// outside Review). Recoverable: the session is unchanged.
var ErrWrongPhase = errors.New("workflow: operation not valid in current phase")
