package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxLineAmount caps the quantity of one line in a payment request.
const MaxLineAmount = 1000

// PriceSource returns trusted unit prices.
type PriceSource interface {
	Price(ctx context.Context, id string) (int64, error)
}

// CartStore is the server side cart used when a request carries no lines.
type CartStore interface {
	Lines() []cart.Line
	ClearCart(ctx context.Context)
}

type Service struct {
	gateway  Gateway
	prices   PriceSource
	cart     CartStore
	currency string
}

func NewService(gateway Gateway, prices PriceSource, c CartStore, currency string) *Service {
	if currency == "" {
		currency = "eur"
	}
	return &Service{gateway: gateway, prices: prices, cart: c, currency: currency}
}

// Quote recomputes the amount to charge as the shipping fee plus the sum of
// quantity times catalog price. Lines from the request take precedence over
// the server cart. The client's totals never affect the result.
func (s *Service) Quote(ctx context.Context, req CreateIntentRequest) (*Quote, error) {
	lines := req.Cart
	if len(lines) == 0 {
		for _, l := range s.cart.Lines() {
			lines = append(lines, CartLine{ID: l.ID, Amount: l.Amount})
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	amount := cart.ShippingFee
	for _, l := range lines {
		if l.Amount < 1 || l.Amount > MaxLineAmount {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLine, l.ID)
		}

		price, err := s.prices.Price(ctx, l.ID)
		if err != nil {
			if errors.Is(err, product.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, l.ID)
			}
			return nil, fmt.Errorf("failed to price %s: %w", l.ID, err)
		}
		if price > 0 && (math.MaxInt64-amount)/int64(l.Amount) < price {
			return nil, fmt.Errorf("%w: %s total overflows", ErrInvalidLine, l.ID)
		}
		amount += int64(l.Amount) * price
	}

	return &Quote{
		Amount:       amount,
		ClientAmount: req.ShippingFee + req.TotalAmount,
		Lines:        len(lines),
	}, nil
}

func (s *Service) CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateIntent"),
	)

	q, err := s.Quote(ctx, req)
	if err != nil {
		log.Warn("failed to quote payment", zap.Error(err))
		return nil, err
	}

	if q.Amount != q.ClientAmount {
		log.Warn("client totals differ from catalog prices",
			zap.Int64("charged", q.Amount),
			zap.Int64("client_amount", q.ClientAmount),
			zap.Int64("client_shipping", req.ShippingFee),
			zap.Int64("client_total", req.TotalAmount),
		)
	}

	return s.gateway.CreatePaymentIntent(ctx, IntentParams{
		Amount:         q.Amount,
		Currency:       s.currency,
		IdempotencyKey: uuid.NewString(),
		Metadata: map[string]string{
			"lines":      strconv.Itoa(q.Lines),
			"request_id": logger.RequestIDFrom(ctx),
		},
	})
}

// HandleEvent reacts to a verified processor event. A succeeded intent
// empties the server cart.
func (s *Service) HandleEvent(ctx context.Context, evt *Event) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "HandleEvent"),
		zap.String("event_id", evt.ID),
		zap.String("event_type", string(evt.Type)),
		zap.String("payment_intent_id", evt.Intent.ID),
	)

	switch evt.Type {
	case EventIntentSucceeded:
		s.cart.ClearCart(ctx)
		log.Info("payment succeeded, cart cleared", zap.Int64("amount", evt.Intent.Amount))
	case EventIntentFailed:
		log.Warn("payment failed")
	default:
		log.Debug("ignoring event")
	}
}
