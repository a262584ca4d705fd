// services/stripe_gateway.go
package services

import (
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway is the slice of the Stripe API this backend touches. The
// real implementation delegates to stripe-go; tests swap in a fake.
type StripeGateway interface {
	CreatePaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	ExpireCheckoutSession(sessionID string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error)
}

type stripeGateway struct{}

// NewStripeGateway returns the live gateway. The API key comes from
// config.InitStripe having set stripe.Key at startup.
func NewStripeGateway() StripeGateway {
	return stripeGateway{}
}

func (stripeGateway) CreatePaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return paymentintent.New(params)
}

func (stripeGateway) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (stripeGateway) ExpireCheckoutSession(sessionID string, params *stripe.CheckoutSessionExpireParams) (*stripe.CheckoutSession, error) {
	return session.Expire(sessionID, params)
}
