// services/payment_service.go
package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"lesson-backend/config"
	"lesson-backend/models"

	stripe "github.com/stripe/stripe-go/v82"
)

// PaymentError is the coarse business-level failure of the payment domain.
// The underlying provider or database error is kept for logging via Unwrap
// but the message is all that ever reaches a client.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string { return e.Message }
func (e *PaymentError) Unwrap() error { return e.Err }

// Checkout sessions expire 30 minutes after creation.
const checkoutSessionTTL = 30 * time.Minute

const provisionalPrefix = "pending_"

// ProvisionalIntentID derives the placeholder correlation key a
// checkout-session booking is stored under before the real payment intent id
// is known.
func ProvisionalIntentID(sessionID string) string {
	return provisionalPrefix + sessionID
}

type PaymentIntentResult struct {
	ClientSecret string
	Amount       float64
}

type CheckoutSessionResult struct {
	SessionID string
}

// PaymentService creates Stripe payment intents and checkout sessions and
// records a PENDING booking for each.
type PaymentService struct {
	Store   BookingStore
	Gateway StripeGateway
	Cfg     *config.Config
}

func NewPaymentService(store BookingStore, gateway StripeGateway, cfg *config.Config) *PaymentService {
	return &PaymentService{Store: store, Gateway: gateway, Cfg: cfg}
}

// CreatePaymentIntent prices the lesson, creates the intent at Stripe and
// persists a PENDING booking keyed by the intent id. ErrInvalidDuration is
// returned as-is; every other failure wraps into a PaymentError.
func (s *PaymentService) CreatePaymentIntent(duration int, isPackage bool) (*PaymentIntentResult, error) {
	amount, err := ResolvePrice(duration, isPackage)
	if err != nil {
		return nil, err
	}
	amountInCents := int64(math.Round(amount * 100))

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	intent, err := s.Gateway.CreatePaymentIntent(params)
	if err != nil {
		log.Printf("stripe payment intent create failed: %v", err)
		return nil, &PaymentError{Message: "Failed to create payment intent", Err: err}
	}
	if intent.ClientSecret == "" {
		return nil, &PaymentError{Message: "Missing client secret in payment intent"}
	}

	booking := &models.Booking{
		Duration:        duration,
		IsPackage:       isPackage,
		Amount:          amount,
		PaymentIntentID: intent.ID,
		Status:          models.BookingPending,
	}
	if err := s.Store.Create(booking); err != nil {
		// The intent already exists at Stripe with no row to settle against.
		log.Printf("booking persist failed after intent %s was created: %v", intent.ID, err)
		return nil, &PaymentError{Message: "Failed to create payment intent", Err: err}
	}

	return &PaymentIntentResult{
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
	}, nil
}

func lessonLineItemName(duration int, isPackage bool) string {
	if isPackage {
		return fmt.Sprintf("Lesson Package (%d minute sessions)", duration)
	}
	return fmt.Sprintf("Single Lesson (%d minutes)", duration)
}

// CreateCheckoutSession creates a hosted Stripe checkout session and persists
// a PENDING booking under the provisional key pending_<sessionID>.
func (s *PaymentService) CreateCheckoutSession(duration int, isPackage bool) (*CheckoutSessionResult, error) {
	amount, err := ResolvePrice(duration, isPackage)
	if err != nil {
		return nil, err
	}
	amountInCents := int64(math.Round(amount * 100))

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(amountInCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(lessonLineItemName(duration, isPackage)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.Cfg.CheckoutSuccessURL),
		CancelURL:  stripe.String(s.Cfg.CheckoutCancelURL),
		ExpiresAt:  stripe.Int64(time.Now().Add(checkoutSessionTTL).Unix()),
	}
	sess, err := s.Gateway.CreateCheckoutSession(params)
	if err != nil {
		log.Printf("stripe checkout session create failed: %v", err)
		return nil, &PaymentError{Message: "Failed to create checkout session", Err: err}
	}

	booking := &models.Booking{
		Duration:        duration,
		IsPackage:       isPackage,
		Amount:          amount,
		PaymentIntentID: ProvisionalIntentID(sess.ID),
		Status:          models.BookingPending,
	}
	if err := s.Store.Create(booking); err != nil {
		log.Printf("booking persist failed after checkout session %s was created: %v", sess.ID, err)
		return nil, &PaymentError{Message: "Failed to create checkout session", Err: err}
	}

	return &CheckoutSessionResult{SessionID: sess.ID}, nil
}

// CancelCheckoutSession expires the session at Stripe and moves the
// provisional-keyed PENDING booking to CANCELLED. Zero matched rows means the
// webhook got there first or the session id is unknown; either way there is
// nothing left to cancel.
func (s *PaymentService) CancelCheckoutSession(sessionID string) error {
	if _, err := s.Gateway.ExpireCheckoutSession(sessionID, &stripe.CheckoutSessionExpireParams{}); err != nil {
		log.Printf("stripe checkout session expire failed for %s: %v", sessionID, err)
		return &PaymentError{Message: "Failed to cancel checkout session", Err: err}
	}

	rows, err := s.Store.Transition(ProvisionalIntentID(sessionID), models.BookingPending, models.BookingCancelled)
	if err != nil {
		log.Printf("booking cancel update failed for session %s: %v", sessionID, err)
		return &PaymentError{Message: "Failed to cancel checkout session", Err: err}
	}
	if rows == 0 {
		return &PaymentError{Message: "No pending booking found for this session"}
	}
	return nil
}

// GetBookingByIntentID reads a booking back by its correlation key.
func (s *PaymentService) GetBookingByIntentID(intentID string) (*models.Booking, error) {
	return s.Store.FindByIntentID(intentID)
}
