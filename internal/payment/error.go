package payment

import "errors"

var (
	// -- Validation & Input --
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidLine    = errors.New("cart line has an invalid amount")
	ErrUnknownProduct = errors.New("cart references an unknown product")
	ErrInvalidAmount  = errors.New("payment amount must be positive")

	// -- Processor --
	ErrMissingAPIKey    = errors.New("payment processor key is not configured")
	ErrProcessor        = errors.New("payment processor error")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrWebhookDisabled  = errors.New("webhook secret is not configured")
)
