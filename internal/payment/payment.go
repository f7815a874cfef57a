package payment

import "context"

// Gateway talks to the payment processor.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, params IntentParams) (*Intent, error)
	// ParseEvent verifies a webhook delivery and decodes it.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
