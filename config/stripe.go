package config

import (
	stripe "github.com/stripe/stripe-go/v82"
)

// InitStripe sets the API key the stripe-go package-level clients use.
func InitStripe(cfg *Config) {
	stripe.Key = cfg.StripeSecretKey
}
