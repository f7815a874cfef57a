package config

import (
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppPort string `envconfig:"APP_PORT" default:"8080"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	ProductsURL      string        `envconfig:"PRODUCTS_URL" default:"https://course-api.com/react-store-products"`
	SingleProductURL string        `envconfig:"SINGLE_PRODUCT_URL" default:"https://course-api.com/react-store-single-product?id="`
	CatalogTTL       time.Duration `envconfig:"CATALOG_TTL" default:"0s"`

	CartStorageKey string `envconfig:"CART_STORAGE_KEY" default:"cart"`
	CartFile       string `envconfig:"CART_FILE" default:"data/cart.json"`
	Redis          storage.RedisConfig

	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	StripeCurrency  string `envconfig:"STRIPE_CURRENCY" default:"eur"`
	// webhook deliveries are rejected while this is empty
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	OIDCIssuer       string `envconfig:"OIDC_ISSUER"`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL" default:"http://localhost:8080/auth/callback"`
	FrontendURL      string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
	SessionSecret    string `envconfig:"SESSION_SECRET"`

	// trusted callers sending this key in X-Service-Auth get the internal rate tier
	InternalSecretKey string `envconfig:"INTERNAL_SECRET_KEY"`
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET must be set")
	}

	return &cfg, nil
}

// AuthEnabled reports whether an identity provider is configured.
func (c *Config) AuthEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
