// services/webhook_service.go
package services

import (
	"encoding/json"
	"log"

	"lesson-backend/models"

	"gorm.io/datatypes"
)

// webhookEnvelope is the common frame of a Stripe event: a type tag plus a
// type-specific object. The object stays raw until the type is known.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type checkoutSessionObject struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
}

// WebhookService reconciles booking state from Stripe's asynchronous,
// at-least-once event deliveries.
type WebhookService struct {
	Store BookingStore
}

func NewWebhookService(store BookingStore) *WebhookService {
	return &WebhookService{Store: store}
}

// HandleEvent applies one webhook delivery to the booking store.
//
// Every known event type resolves to a single update matched on correlation
// key + PENDING status, so a redelivered event (or one racing a cancel
// request) matches zero rows and is a logged no-op. Unknown event types are
// logged and ignored. Store failures come back as a coarse PaymentError; the
// detail is logged, not surfaced.
func (s *WebhookService) HandleEvent(payload []byte) error {
	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		log.Printf("webhook payload decode failed: %v", err)
		return &PaymentError{Message: "Failed to process webhook event", Err: err}
	}

	s.logEvent(env.Type, payload)

	switch env.Type {
	case "payment_intent.succeeded":
		return s.settlePaymentIntent(env, models.BookingCompleted)

	case "payment_intent.payment_failed":
		return s.settlePaymentIntent(env, models.BookingFailed)

	case "checkout.session.completed":
		var sess checkoutSessionObject
		if err := json.Unmarshal(env.Data.Object, &sess); err != nil || sess.ID == "" {
			log.Printf("webhook %s: bad session object: %v", env.Type, err)
			return &PaymentError{Message: "Failed to process webhook event", Err: err}
		}
		provisional := ProvisionalIntentID(sess.ID)
		realIntentID := sess.PaymentIntent
		if realIntentID == "" {
			// No intent id on the event; the booking keeps its provisional key.
			realIntentID = provisional
		}
		rows, err := s.Store.CompleteCheckout(provisional, realIntentID)
		if err != nil {
			log.Printf("webhook %s: update failed for session %s: %v", env.Type, sess.ID, err)
			return &PaymentError{Message: "Failed to process webhook event", Err: err}
		}
		if rows == 0 {
			log.Printf("webhook %s: no pending booking for session %s", env.Type, sess.ID)
		}
		return nil

	case "checkout.session.expired":
		var sess checkoutSessionObject
		if err := json.Unmarshal(env.Data.Object, &sess); err != nil || sess.ID == "" {
			log.Printf("webhook %s: bad session object: %v", env.Type, err)
			return &PaymentError{Message: "Failed to process webhook event", Err: err}
		}
		rows, err := s.Store.Transition(ProvisionalIntentID(sess.ID), models.BookingPending, models.BookingCancelled)
		if err != nil {
			log.Printf("webhook %s: update failed for session %s: %v", env.Type, sess.ID, err)
			return &PaymentError{Message: "Failed to process webhook event", Err: err}
		}
		if rows == 0 {
			log.Printf("webhook %s: no pending booking for session %s", env.Type, sess.ID)
		}
		return nil

	default:
		log.Printf("Unhandled webhook event type: %s", env.Type)
		return nil
	}
}

func (s *WebhookService) settlePaymentIntent(env webhookEnvelope, to models.BookingStatus) error {
	var intent paymentIntentObject
	if err := json.Unmarshal(env.Data.Object, &intent); err != nil || intent.ID == "" {
		log.Printf("webhook %s: bad payment intent object: %v", env.Type, err)
		return &PaymentError{Message: "Failed to process webhook event", Err: err}
	}

	rows, err := s.Store.Transition(intent.ID, models.BookingPending, to)
	if err != nil {
		log.Printf("webhook %s: update failed for intent %s: %v", env.Type, intent.ID, err)
		return &PaymentError{Message: "Failed to process webhook event", Err: err}
	}
	if rows == 0 {
		log.Printf("webhook %s: no pending booking for intent %s", env.Type, intent.ID)
	}
	return nil
}

// logEvent appends the delivery to the audit table. Best effort only; a
// failed insert must not block reconciliation.
func (s *WebhookService) logEvent(eventType string, payload []byte) {
	event := &models.WebhookEvent{
		EventType: eventType,
		Payload:   datatypes.JSON(payload),
	}
	if err := s.Store.LogEvent(event); err != nil {
		log.Printf("warning: failed to record webhook event %s: %v", eventType, err)
	}
}
