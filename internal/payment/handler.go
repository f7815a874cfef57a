package payment

import (
	"errors"
	"io"
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const maxWebhookBytes = 64 << 10

type Handler struct {
	service *Service
	gateway Gateway
}

func NewHandler(service *Service, gateway Gateway) *Handler {
	return &Handler{service: service, gateway: gateway}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/create-payment-intent", h.HandleCreatePaymentIntent)
	mux.HandleFunc("/api/hello", HandleHello)
	mux.HandleFunc("POST /webhook/stripe", h.HandleWebhook)
}

type msgResponse struct {
	Msg string `json:"msg"`
}

// HandleCreatePaymentIntent answers any method. Only a POST with a body
// creates an intent; everything else gets a static message.
func (h *Handler) HandleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "CreatePaymentIntent"),
	)

	if r.Method != http.MethodPost {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Create Payment Intent"})
		return
	}

	// storefront clients forward whole cart lines; only id and amount are read
	var req CreateIntentRequest
	if err := utils.DecodeJSONLenient(r, &req); err != nil {
		if errors.Is(err, utils.ErrEmptyBody) {
			utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Create Payment Intent"})
			return
		}
		log.Warn("malformed payment intent request", zap.Error(err))
		utils.WriteJSON(w, http.StatusBadRequest, msgResponse{Msg: err.Error()})
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), req)
	if err != nil {
		utils.WriteJSON(w, statusFor(err), msgResponse{Msg: Message(err)})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"clientSecret": intent.ClientSecret})
}

// HandleWebhook verifies and applies a processor event.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "Webhook"),
	)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	evt, err := h.gateway.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Warn("rejected webhook", zap.Error(err))
		switch {
		case errors.Is(err, ErrWebhookDisabled):
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
		default:
			utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		}
		return
	}

	h.service.HandleEvent(r.Context(), evt)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// HandleHello is a liveness check echoing the request line.
func HandleHello(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"name":   "Hello World",
		"method": r.Method,
		"url":    r.URL.String(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidLine),
		errors.Is(err, ErrUnknownProduct),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
