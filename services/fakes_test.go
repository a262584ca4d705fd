package services

import (
	"fmt"

	"lesson-backend/models"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
)

// fakeBookingStore keeps bookings in a map keyed by payment intent id and
// mirrors the store's update-by-key-and-status row-count semantics.
type fakeBookingStore struct {
	bookings map[string]*models.Booking
	events   []*models.WebhookEvent

	createErr error
	updateErr error

	nextID uint
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*models.Booking{}}
}

func (f *fakeBookingStore) Create(booking *models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, exists := f.bookings[booking.PaymentIntentID]; exists {
		return fmt.Errorf("duplicate payment intent id %s", booking.PaymentIntentID)
	}
	f.nextID++
	booking.ID = f.nextID
	f.bookings[booking.PaymentIntentID] = booking
	return nil
}

func (f *fakeBookingStore) FindByIntentID(intentID string) (*models.Booking, error) {
	booking, ok := f.bookings[intentID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func (f *fakeBookingStore) Transition(intentID string, from, to models.BookingStatus) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	booking, ok := f.bookings[intentID]
	if !ok || booking.Status != from {
		return 0, nil
	}
	booking.Status = to
	return 1, nil
}

func (f *fakeBookingStore) CompleteCheckout(provisionalID, realIntentID string) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	booking, ok := f.bookings[provisionalID]
	if !ok || booking.Status != models.BookingPending {
		return 0, nil
	}
	delete(f.bookings, provisionalID)
	booking.PaymentIntentID = realIntentID
	booking.Status = models.BookingCompleted
	f.bookings[realIntentID] = booking
	return 1, nil
}

func (f *fakeBookingStore) LogEvent(event *models.WebhookEvent) error {
	f.events = append(f.events, event)
	return nil
}

// fakeStripeGateway records the params of each call and issues ids shaped
// like Stripe's test-mode ones.
type fakeStripeGateway struct {
	intentParams  *stripe.PaymentIntentParams
	sessionParams *stripe.CheckoutSessionParams
	expired       []string

	intentErr  error
	sessionErr error
	expireErr  error

	// overrides returned instead of the generated objects when set
	intent  *stripe.PaymentIntent
	session *stripe.CheckoutSession
}

func (f *fakeStripeGateway) CreatePaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	f.intentParams = params
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return &stripe.PaymentIntent{
		ID:           "pi_test_" + uuid.NewString(),
		ClientSecret: "test_secret_" + uuid.NewString(),
	}, nil
}

func (f *fakeStripeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.sessionParams = params
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if f.session != nil {
		return f.session, nil
	}
	return &stripe.CheckoutSession{
		ID: "cs_test_" + uuid.NewString(),
	}, nil
}

func (f *fakeStripeGateway) ExpireCheckoutSession(sessionID string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error) {
	if f.expireErr != nil {
		return nil, f.expireErr
	}
	f.expired = append(f.expired, sessionID)
	return &stripe.CheckoutSession{ID: sessionID}, nil
}
