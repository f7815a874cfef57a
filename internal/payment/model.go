package payment

type IntentParams struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type EventType string

const (
	EventIntentSucceeded EventType = "payment_intent.succeeded"
	EventIntentFailed    EventType = "payment_intent.payment_failed"
)

// Event is a verified processor notification about one intent.
type Event struct {
	ID     string
	Type   EventType
	Intent Intent
}

// CartLine is a product id and quantity as sent by the storefront.
type CartLine struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

// CreateIntentRequest is the body of a payment intent request. The totals are
// the client's own view and are only compared with the recomputed amount.
type CreateIntentRequest struct {
	ShippingFee int64      `json:"shippingFee"`
	TotalAmount int64      `json:"totalAmount"`
	Cart        []CartLine `json:"cart,omitempty"`
}

type Quote struct {
	Amount       int64 `json:"amount"`
	ClientAmount int64 `json:"clientAmount"`
	Lines        int   `json:"lines"`
}
