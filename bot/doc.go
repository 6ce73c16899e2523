// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot dispatches Telegram updates into the invoice review
// workflow and renders its replies.
//
// The boundary between the two worlds runs through this package:
// commands and inline-button callbacks are decoded into typed values
// once, the 1-based shipment numbering shown to operators is
// translated to the workflow's 0-based indexes here, and nothing in
// the workflow packages ever sees Telegram types.
package bot
