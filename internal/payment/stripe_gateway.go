package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront-be/internal/logger"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

const stripeTimeout = 15 * time.Second

type stripeGateway struct {
	intents       paymentintent.Client
	webhookSecret string
}

// ----------------- Constructor -----------------

func NewStripeGateway(secretKey, webhookSecret string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: stripeTimeout,
		},
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})

	return newStripeGateway(secretKey, webhookSecret, backend)
}

func newStripeGateway(secretKey, webhookSecret string, backend stripe.Backend) *stripeGateway {
	return &stripeGateway{
		intents:       paymentintent.Client{B: backend, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// ----------------- CreatePaymentIntent -----------------

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, p IntentParams) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreatePaymentIntent"),
		zap.Int64("amount", p.Amount),
		zap.String("currency", p.Currency),
	)

	if g.intents.Key == "" {
		return nil, ErrMissingAPIKey
	}
	if p.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	start := time.Now()
	pi, err := g.intents.New(params)
	if err != nil {
		log.Error("Stripe payment intent failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, processorError(err)
	}

	log.Info("Stripe payment intent created",
		zap.String("payment_intent_id", pi.ID),
		zap.String("status", string(pi.Status)),
		zap.Duration("duration", time.Since(start)),
	)

	return toIntent(pi), nil
}

// ----------------- ParseEvent -----------------

func (g *stripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrWebhookDisabled
	}

	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: EventType(evt.Type)}

	if evt.Data != nil && len(evt.Data.Raw) > 0 {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err == nil {
			out.Intent = *toIntent(&pi)
		}
	}
	return out, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
}

// processorError marks err as coming from the processor while keeping the
// underlying *stripe.Error reachable for Message.
func processorError(err error) error {
	return fmt.Errorf("%w: %w", ErrProcessor, err)
}

// Message returns the text to report to the client for err, preferring the
// processor's own message.
func Message(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}
