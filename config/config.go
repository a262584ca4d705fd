package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config centralises all environment configuration.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// DB. MYSQL_URL (mysql://... or a raw DSN) wins over the individual vars.
	MySQLURL string `envconfig:"MYSQL_URL"`
	DBUser   string `envconfig:"DB_USER" default:"root"`
	DBPass   string `envconfig:"DB_PASS" default:""`
	DBHost   string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort   string `envconfig:"DB_PORT" default:"3306"`
	DBName   string `envconfig:"DB_NAME" default:"lesson_db"`

	// Stripe
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY" required:"true"`

	// Checkout redirect targets
	CheckoutSuccessURL string `envconfig:"CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/booking/success"`
	CheckoutCancelURL  string `envconfig:"CHECKOUT_CANCEL_URL" default:"http://localhost:3000/booking/cancelled"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
