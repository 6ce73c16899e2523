// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"fmt"
)

// Phase is the lifecycle stage of a session.
type Phase string

const (
	// PhaseCollecting accepts invoice photos.
	PhaseCollecting Phase = "collecting"
	// PhaseReview holds extracted shipments open to operator edits.
	PhaseReview Phase = "review"
)

// Draft is one extracted customs-invoice record as delivered by the
// extraction engine, before operator defaults are applied. Every
// field is an opaque string, trusted verbatim; the extraction adapter
// substitutes its "N/A" marker for anything the engine could not find.
type Draft struct {
	TrackingNumber   string
	ShipmentID       string
	Shipper          string
	ShipperCountry   string
	Recipient        string
	RecipientAddress string
	GoodsDescription string
	DeclaredValue    string
	DutyAmount       string
	EntryPrepFee     string
	TotalCharges     string
	InvoiceNumber    string
	InvoiceDate      string
	Carrier          string
	PaymentURL       string
	Notes            string
}

// Shipment is a committed draft plus the two operator-settable fields.
// Shipments are owned by their session and addressed by zero-based
// index, stable for the lifetime of the review phase.
type Shipment struct {
	Draft

	// OrderNumber is assigned by the operator. Empty until set.
	OrderNumber string

	// PaymentApproved records whether the operator approved the
	// charge. Defaults to true on creation.
	PaymentApproved bool
}

// Extractor turns an ordered image sequence into shipment drafts.
// Implemented by extraction.Extractor; tests substitute fakes.
type Extractor interface {
	Extract(ctx context.Context, images [][]byte) ([]Draft, error)
}

// Session is the per-operator workflow state. It is not safe for
// concurrent use; the Store serializes access.
type Session struct {
	phase     Phase
	images    [][]byte
	shipments []Shipment
}

// NewSession returns a session in the initial state: collecting, no
// images, no shipments.
func NewSession() *Session {
	return &Session{phase: PhaseCollecting}
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase {
	return s.phase
}

// ImageCount returns the number of collected images.
func (s *Session) ImageCount() int {
	return len(s.images)
}

// ShipmentCount returns the number of committed shipments.
func (s *Session) ShipmentCount() int {
	return len(s.shipments)
}

// Shipments returns a copy of the committed shipments in index order.
func (s *Session) Shipments() []Shipment {
	shipments := make([]Shipment, len(s.shipments))
	copy(shipments, s.shipments)
	return shipments
}

// Shipment returns the shipment at the zero-based index. Pure read.
func (s *Session) Shipment(index int) (Shipment, error) {
	if index < 0 || index >= len(s.shipments) {
		return Shipment{}, fmt.Errorf("%w: index %d, have %d", ErrOutOfRange, index, len(s.shipments))
	}
	return s.shipments[index], nil
}

// AddResult reports the outcome of AddImage.
type AddResult struct {
	// Count is the number of images collected so far, the new image
	// included.
	Count int

	// DiscardedReview is true when the image arrived during review:
	// the prior shipments and images were dropped and a fresh
	// collecting phase started with this image as its first.
	DiscardedReview bool
}

// AddImage appends an image to the session. A photo arriving during
// review abandons the review wholesale — shipments and previously
// accumulated images are discarded and collection restarts with the
// new image.
func (s *Session) AddImage(image []byte) AddResult {
	discarded := false
	if s.phase == PhaseReview {
		s.Reset()
		discarded = true
	}
	s.images = append(s.images, image)
	return AddResult{Count: len(s.images), DiscardedReview: discarded}
}

// Finalize runs extraction over the collected images and commits the
// resulting shipment batch, moving the session to review. Valid only
// while collecting; with no images it returns ErrEmptyInput.
//
// The commit is all-or-nothing: on any extraction failure the session
// is unchanged — phase stays collecting and the images are preserved
// so the operator can retry.
func (s *Session) Finalize(ctx context.Context, extractor Extractor) (int, error) {
	if s.phase != PhaseCollecting {
		return 0, fmt.Errorf("%w: finalize requires %s, session is in %s", ErrWrongPhase, PhaseCollecting, s.phase)
	}
	return s.extractAndCommit(ctx, extractor)
}

// Refinalize re-runs extraction over the same accumulated images,
// atomically replacing the shipment batch (operator edits included).
// Valid only in review. This is the explicit "retry with the same
// photos" operation; failures leave the existing review untouched.
func (s *Session) Refinalize(ctx context.Context, extractor Extractor) (int, error) {
	if s.phase != PhaseReview {
		return 0, fmt.Errorf("%w: refinalize requires %s, session is in %s", ErrWrongPhase, PhaseReview, s.phase)
	}
	return s.extractAndCommit(ctx, extractor)
}

// extractAndCommit is the shared finalize path. State is mutated only
// after extraction succeeds.
func (s *Session) extractAndCommit(ctx context.Context, extractor Extractor) (int, error) {
	if len(s.images) == 0 {
		return 0, ErrEmptyInput
	}

	drafts, err := extractor.Extract(ctx, s.images)
	if err != nil {
		return 0, err
	}

	shipments := make([]Shipment, len(drafts))
	for i, draft := range drafts {
		shipments[i] = Shipment{
			Draft:           draft,
			OrderNumber:     "",
			PaymentApproved: true,
		}
	}

	s.shipments = shipments
	s.phase = PhaseReview
	return len(shipments), nil
}

// SetApproval records the operator's payment decision for one
// shipment. Idempotent; out-of-range indexes mutate nothing.
func (s *Session) SetApproval(index int, approved bool) error {
	if index < 0 || index >= len(s.shipments) {
		return fmt.Errorf("%w: index %d, have %d", ErrOutOfRange, index, len(s.shipments))
	}
	s.shipments[index].PaymentApproved = approved
	return nil
}

// SetOrderNumber assigns the operator's order number to one shipment.
// Idempotent overwrite; out-of-range indexes mutate nothing.
func (s *Session) SetOrderNumber(index int, orderNumber string) error {
	if index < 0 || index >= len(s.shipments) {
		return fmt.Errorf("%w: index %d, have %d", ErrOutOfRange, index, len(s.shipments))
	}
	s.shipments[index].OrderNumber = orderNumber
	return nil
}

// Reset unconditionally restores the initial state.
func (s *Session) Reset() {
	s.phase = PhaseCollecting
	s.images = nil
	s.shipments = nil
}
