// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package extraction turns invoice photographs into shipment drafts.
//
// The Extractor sends the images to a vision-capable language model
// together with a fixed prompt that asks for the invoice fields as a
// JSON array, one element per unique shipment. The model's reply is
// tolerantly parsed: markup fences are stripped, a single object is
// accepted in place of an array, and missing fields are filled with
// the "N/A" placeholder.
package extraction
