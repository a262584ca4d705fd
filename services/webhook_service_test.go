package services

import (
	"errors"
	"fmt"
	"testing"

	"lesson-backend/models"
)

func pendingBooking(t *testing.T, store *fakeBookingStore, intentID string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		Duration:        30,
		Amount:          30,
		PaymentIntentID: intentID,
		Status:          models.BookingPending,
	}
	if err := store.Create(booking); err != nil {
		t.Fatal(err)
	}
	return booking
}

func intentEvent(eventType, intentID, status string) []byte {
	return []byte(fmt.Sprintf(`{"type":%q,"data":{"object":{"id":%q,"status":%q}}}`, eventType, intentID, status))
}

func sessionEvent(eventType, sessionID, paymentIntentID string) []byte {
	if paymentIntentID == "" {
		return []byte(fmt.Sprintf(`{"type":%q,"data":{"object":{"id":%q}}}`, eventType, sessionID))
	}
	return []byte(fmt.Sprintf(`{"type":%q,"data":{"object":{"id":%q,"payment_intent":%q}}}`, eventType, sessionID, paymentIntentID))
}

func TestHandleEventPaymentIntent(t *testing.T) {
	t.Parallel()

	t.Run("succeeded completes the matching booking only", func(t *testing.T) {
		store := newFakeBookingStore()
		target := pendingBooking(t, store, "pi_test_success")
		other := pendingBooking(t, store, "pi_test_other")
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(intentEvent("payment_intent.succeeded", "pi_test_success", "succeeded")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if target.Status != models.BookingCompleted {
			t.Fatalf("expected COMPLETED, got %s", target.Status)
		}
		if other.Status != models.BookingPending {
			t.Fatalf("unrelated booking must stay PENDING, got %s", other.Status)
		}
	})

	t.Run("payment_failed fails the booking", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, "pi_test_failed")
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(intentEvent("payment_intent.payment_failed", "pi_test_failed", "failed")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != models.BookingFailed {
			t.Fatalf("expected FAILED, got %s", booking.Status)
		}
	})

	t.Run("redelivery is a no-op on a terminal booking", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, "pi_test_redeliver")
		svc := NewWebhookService(store)

		event := intentEvent("payment_intent.succeeded", "pi_test_redeliver", "succeeded")
		if err := svc.HandleEvent(event); err != nil {
			t.Fatalf("first delivery: %v", err)
		}
		if err := svc.HandleEvent(event); err != nil {
			t.Fatalf("redelivery must not error: %v", err)
		}
		if booking.Status != models.BookingCompleted {
			t.Fatalf("expected COMPLETED, got %s", booking.Status)
		}

		// A late contradictory event must not move a settled booking either.
		if err := svc.HandleEvent(intentEvent("payment_intent.payment_failed", "pi_test_redeliver", "failed")); err != nil {
			t.Fatalf("late failure event must not error: %v", err)
		}
		if booking.Status != models.BookingCompleted {
			t.Fatalf("terminal state must not change, got %s", booking.Status)
		}
	})

	t.Run("unknown intent id is a no-op", func(t *testing.T) {
		svc := NewWebhookService(newFakeBookingStore())
		if err := svc.HandleEvent(intentEvent("payment_intent.succeeded", "pi_test_missing", "succeeded")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("store failure surfaces as PaymentError", func(t *testing.T) {
		store := newFakeBookingStore()
		store.updateErr = errors.New("db down")
		svc := NewWebhookService(store)

		err := svc.HandleEvent(intentEvent("payment_intent.succeeded", "pi_test_x", "succeeded"))
		var paymentErr *PaymentError
		if !errors.As(err, &paymentErr) {
			t.Fatalf("expected PaymentError, got %v", err)
		}
		if paymentErr.Message != "Failed to process webhook event" {
			t.Fatalf("unexpected message %q", paymentErr.Message)
		}
	})
}

func TestHandleEventCheckoutSession(t *testing.T) {
	t.Parallel()

	t.Run("completed rewrites the provisional key and completes", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, ProvisionalIntentID("cs_test_done"))
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(sessionEvent("checkout.session.completed", "cs_test_done", "pi_real_123")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != models.BookingCompleted {
			t.Fatalf("expected COMPLETED, got %s", booking.Status)
		}
		if booking.PaymentIntentID != "pi_real_123" {
			t.Fatalf("expected real intent id, got %q", booking.PaymentIntentID)
		}
		if _, err := store.FindByIntentID("pi_real_123"); err != nil {
			t.Fatalf("booking should be findable by the real id: %v", err)
		}
		if _, err := store.FindByIntentID(ProvisionalIntentID("cs_test_done")); !errors.Is(err, ErrBookingNotFound) {
			t.Fatal("provisional key should be gone")
		}
	})

	t.Run("completed without intent id keeps the provisional key", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, ProvisionalIntentID("cs_test_nopi"))
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(sessionEvent("checkout.session.completed", "cs_test_nopi", "")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != models.BookingCompleted {
			t.Fatalf("expected COMPLETED, got %s", booking.Status)
		}
		if booking.PaymentIntentID != ProvisionalIntentID("cs_test_nopi") {
			t.Fatalf("provisional key should survive, got %q", booking.PaymentIntentID)
		}
	})

	t.Run("expired cancels the pending booking", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, ProvisionalIntentID("cs_test_exp"))
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(sessionEvent("checkout.session.expired", "cs_test_exp", "")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != models.BookingCancelled {
			t.Fatalf("expected CANCELLED, got %s", booking.Status)
		}
	})

	t.Run("expired after completion is a no-op", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, ProvisionalIntentID("cs_test_race"))
		svc := NewWebhookService(store)

		if err := svc.HandleEvent(sessionEvent("checkout.session.completed", "cs_test_race", "pi_real_race")); err != nil {
			t.Fatal(err)
		}
		if err := svc.HandleEvent(sessionEvent("checkout.session.expired", "cs_test_race", "")); err != nil {
			t.Fatalf("late expiry must not error: %v", err)
		}
		if booking.Status != models.BookingCompleted {
			t.Fatalf("expected COMPLETED to stick, got %s", booking.Status)
		}
	})
}

func TestHandleEventMisc(t *testing.T) {
	t.Parallel()

	t.Run("unknown event type is a logged no-op", func(t *testing.T) {
		store := newFakeBookingStore()
		booking := pendingBooking(t, store, "pi_test_untouched")
		svc := NewWebhookService(store)

		if err := svc.HandleEvent([]byte(`{"type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Status != models.BookingPending {
			t.Fatalf("nothing should change, got %s", booking.Status)
		}
	})

	t.Run("malformed payload is an error", func(t *testing.T) {
		svc := NewWebhookService(newFakeBookingStore())
		err := svc.HandleEvent([]byte(`{"type":`))
		var paymentErr *PaymentError
		if !errors.As(err, &paymentErr) {
			t.Fatalf("expected PaymentError, got %v", err)
		}
	})

	t.Run("deliveries are recorded in the audit log", func(t *testing.T) {
		store := newFakeBookingStore()
		svc := NewWebhookService(store)

		_ = svc.HandleEvent(intentEvent("payment_intent.succeeded", "pi_test_a", "succeeded"))
		_ = svc.HandleEvent([]byte(`{"type":"charge.refunded","data":{"object":{}}}`))

		if len(store.events) != 2 {
			t.Fatalf("expected 2 audit rows, got %d", len(store.events))
		}
		if store.events[0].EventType != "payment_intent.succeeded" {
			t.Fatalf("unexpected event type %q", store.events[0].EventType)
		}
		if store.events[1].EventType != "charge.refunded" {
			t.Fatalf("unexpected event type %q", store.events[1].EventType)
		}
	})
}
