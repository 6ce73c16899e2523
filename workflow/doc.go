// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow holds the per-operator session state machine at the
// heart of Dutydesk.
//
// A [Session] moves through two phases. In [PhaseCollecting] it
// accumulates invoice photos; [Session.Finalize] hands the accumulated
// images to an [Extractor] and, on success, commits the returned
// shipment batch and enters [PhaseReview]. In review, shipments are
// addressed by stable zero-based index and accrue operator edits
// ([Session.SetApproval], [Session.SetOrderNumber]) until the operator
// either starts over (a new photo discards the review wholesale) or
// re-runs extraction over the same images ([Session.Refinalize]).
//
// [Store] owns all sessions: it maps operator user IDs to lazily
// created sessions and serializes access per user. [Store.Do] holds
// the user's lock for the whole callback, including any extraction
// call made inside it, so concurrent events for one operator never
// interleave; different operators are fully independent.
//
// Extraction failures never corrupt a session: the shipment batch is
// committed all-or-nothing and the images are preserved for retry.
package workflow
