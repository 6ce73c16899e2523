// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// fakeExtractor returns canned drafts and records the images it was
// handed.
type fakeExtractor struct {
	drafts []Draft
	err    error
	images [][]byte
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, images [][]byte) ([]Draft, error) {
	f.calls++
	f.images = images
	if f.err != nil {
		return nil, f.err
	}
	return f.drafts, nil
}

func twoDrafts() []Draft {
	return []Draft{
		{TrackingNumber: "1Z999", Shipper: "Acme", TotalCharges: "42.50"},
		{TrackingNumber: "JD014", Shipper: "Globex", TotalCharges: "13.00"},
	}
}

// reviewSession builds a session finalized over the given images.
func reviewSession(t *testing.T, drafts []Draft, images ...[]byte) *Session {
	t.Helper()
	session := NewSession()
	for _, image := range images {
		session.AddImage(image)
	}
	count, err := session.Finalize(context.Background(), &fakeExtractor{drafts: drafts})
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if count != len(drafts) {
		t.Fatalf("unexpected shipment count: got %d, want %d", count, len(drafts))
	}
	return session
}

func TestAddImageAccumulatesInOrder(t *testing.T) {
	session := NewSession()
	images := [][]byte{[]byte("a"), []byte("b"), []byte("c")}

	for i, image := range images {
		result := session.AddImage(image)
		if result.Count != i+1 {
			t.Errorf("after %d adds: count = %d", i+1, result.Count)
		}
		if result.DiscardedReview {
			t.Error("no review to discard while collecting")
		}
	}
	if session.Phase() != PhaseCollecting {
		t.Errorf("unexpected phase: %s", session.Phase())
	}

	// Finalize must see the images in arrival order.
	extractor := &fakeExtractor{drafts: []Draft{{}}}
	if _, err := session.Finalize(context.Background(), extractor); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !reflect.DeepEqual(extractor.images, images) {
		t.Errorf("extractor saw images %q", extractor.images)
	}
}

func TestFinalizeWithoutImages(t *testing.T) {
	session := NewSession()
	extractor := &fakeExtractor{drafts: []Draft{{}}}

	_, err := session.Finalize(context.Background(), extractor)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if extractor.calls != 0 {
		t.Error("extractor must not be called with no images")
	}
	if session.Phase() != PhaseCollecting || session.ShipmentCount() != 0 {
		t.Error("session must be unchanged")
	}
}

func TestFinalizeCommitsBatchWithDefaults(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))

	if session.Phase() != PhaseReview {
		t.Errorf("unexpected phase: %s", session.Phase())
	}
	for i, shipment := range session.Shipments() {
		if shipment.OrderNumber != "" {
			t.Errorf("shipment %d: order number should default empty, got %q", i, shipment.OrderNumber)
		}
		if !shipment.PaymentApproved {
			t.Errorf("shipment %d: payment should default approved", i)
		}
	}
	if session.Shipments()[0].TrackingNumber != "1Z999" {
		t.Error("draft fields must carry over verbatim")
	}
}

func TestFinalizeFailurePreservesSession(t *testing.T) {
	session := NewSession()
	session.AddImage([]byte("one"))
	session.AddImage([]byte("two"))

	_, err := session.Finalize(context.Background(), &fakeExtractor{err: fmt.Errorf("engine unreachable")})
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if session.Phase() != PhaseCollecting {
		t.Errorf("phase must stay collecting, got %s", session.Phase())
	}
	if session.ImageCount() != 2 {
		t.Errorf("images must be preserved for retry, have %d", session.ImageCount())
	}
	if session.ShipmentCount() != 0 {
		t.Error("no shipments may be committed on failure")
	}

	// Retry against a working extractor succeeds with the same images.
	extractor := &fakeExtractor{drafts: []Draft{{}}}
	if _, err := session.Finalize(context.Background(), extractor); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(extractor.images) != 2 {
		t.Errorf("retry saw %d images", len(extractor.images))
	}
}

func TestFinalizePhaseGate(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))

	if _, err := session.Finalize(context.Background(), &fakeExtractor{}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Finalize in review: expected ErrWrongPhase, got %v", err)
	}

	fresh := NewSession()
	if _, err := fresh.Refinalize(context.Background(), &fakeExtractor{}); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("Refinalize while collecting: expected ErrWrongPhase, got %v", err)
	}
}

func TestRefinalizeReplacesBatch(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))
	if err := session.SetOrderNumber(0, "ORD-1"); err != nil {
		t.Fatalf("SetOrderNumber failed: %v", err)
	}

	extractor := &fakeExtractor{drafts: []Draft{{TrackingNumber: "NEW"}}}
	count, err := session.Refinalize(context.Background(), extractor)
	if err != nil {
		t.Fatalf("Refinalize failed: %v", err)
	}
	if count != 1 || session.ShipmentCount() != 1 {
		t.Errorf("unexpected batch size: %d", session.ShipmentCount())
	}
	if len(extractor.images) != 1 {
		t.Errorf("refinalize must reuse the accumulated images, saw %d", len(extractor.images))
	}
	shipment, _ := session.Shipment(0)
	if shipment.TrackingNumber != "NEW" || shipment.OrderNumber != "" {
		t.Errorf("batch must be replaced with fresh defaults: %+v", shipment)
	}
}

func TestRefinalizeFailureKeepsReview(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))
	if err := session.SetApproval(1, false); err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}

	_, err := session.Refinalize(context.Background(), &fakeExtractor{err: fmt.Errorf("engine down")})
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if session.Phase() != PhaseReview || session.ShipmentCount() != 2 {
		t.Error("failed refinalize must leave the review untouched")
	}
	shipment, _ := session.Shipment(1)
	if shipment.PaymentApproved {
		t.Error("operator edits must survive a failed refinalize")
	}
}

func TestPhotoDuringReviewDiscardsEverything(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("old1"), []byte("old2"), []byte("old3"))

	first := session.AddImage([]byte("new1"))
	if !first.DiscardedReview {
		t.Error("first photo in review must report the discarded review")
	}
	if first.Count != 1 {
		t.Errorf("collection must restart at 1, got %d", first.Count)
	}

	second := session.AddImage([]byte("new2"))
	if second.DiscardedReview {
		t.Error("second photo lands in a normal collecting phase")
	}
	if second.Count != 2 {
		t.Errorf("unexpected count: %d", second.Count)
	}

	if session.Phase() != PhaseCollecting || session.ShipmentCount() != 0 {
		t.Error("review state must be gone")
	}
	if session.ImageCount() != 2 {
		t.Errorf("only the new images may remain, have %d", session.ImageCount())
	}
}

func TestSetApprovalIdempotent(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))

	if err := session.SetApproval(0, false); err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	once := session.Shipments()

	if err := session.SetApproval(0, false); err != nil {
		t.Fatalf("repeated SetApproval failed: %v", err)
	}
	twice := session.Shipments()

	if !reflect.DeepEqual(once, twice) {
		t.Error("applying the same approval twice must not change state")
	}
	if twice[0].PaymentApproved {
		t.Error("approval flag not recorded")
	}
	if !twice[1].PaymentApproved {
		t.Error("untouched shipment must keep its default")
	}
}

func TestSetOrderNumberTargetsOneShipment(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))

	if err := session.SetOrderNumber(0, "ABC 123"); err != nil {
		t.Fatalf("SetOrderNumber failed: %v", err)
	}
	shipments := session.Shipments()
	if shipments[0].OrderNumber != "ABC 123" {
		t.Errorf("unexpected order number: %q", shipments[0].OrderNumber)
	}
	if shipments[1].OrderNumber != "" {
		t.Errorf("shipment 1 must be untouched, got %q", shipments[1].OrderNumber)
	}
}

func TestIndexBounds(t *testing.T) {
	session := reviewSession(t, twoDrafts(), []byte("img"))
	before := session.Shipments()

	for _, index := range []int{-1, 2, 99} {
		if err := session.SetApproval(index, false); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetApproval(%d): expected ErrOutOfRange, got %v", index, err)
		}
		if err := session.SetOrderNumber(index, "X"); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetOrderNumber(%d): expected ErrOutOfRange, got %v", index, err)
		}
		if _, err := session.Shipment(index); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Shipment(%d): expected ErrOutOfRange, got %v", index, err)
		}
	}

	if !reflect.DeepEqual(before, session.Shipments()) {
		t.Error("out-of-range operations must not mutate shipments")
	}
}

func TestResetFromAnyState(t *testing.T) {
	t.Run("while collecting", func(t *testing.T) {
		session := NewSession()
		session.AddImage([]byte("img"))
		session.Reset()
		assertInitial(t, session)
	})

	t.Run("during review", func(t *testing.T) {
		session := reviewSession(t, twoDrafts(), []byte("img"))
		session.Reset()
		assertInitial(t, session)
	})

	t.Run("already initial", func(t *testing.T) {
		session := NewSession()
		session.Reset()
		assertInitial(t, session)
	})
}

func assertInitial(t *testing.T, session *Session) {
	t.Helper()
	if session.Phase() != PhaseCollecting {
		t.Errorf("unexpected phase: %s", session.Phase())
	}
	if session.ImageCount() != 0 {
		t.Errorf("unexpected image count: %d", session.ImageCount())
	}
	if session.ShipmentCount() != 0 {
		t.Errorf("unexpected shipment count: %d", session.ShipmentCount())
	}
}
