package cart

import (
	"context"
	"errors"
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/money"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// ProductLookup resolves the detail record of a product.
type ProductLookup interface {
	Product(ctx context.Context, id string) (*product.SingleProduct, error)
}

type Handler struct {
	store    *Store
	products ProductLookup
}

func NewHandler(store *Store, products ProductLookup) *Handler {
	return &Handler{store: store, products: products}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/cart", h.HandleGet)
	mux.HandleFunc("DELETE /api/cart", h.HandleClear)
	mux.HandleFunc("POST /api/cart/items", h.HandleAdd)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.HandleRemove)
	mux.HandleFunc("POST /api/cart/items/{id}/toggle", h.HandleToggle)
}

type Formatted struct {
	Subtotal   string `json:"subtotal"`
	Shipping   string `json:"shippingFee"`
	OrderTotal string `json:"orderTotal"`
}

type Response struct {
	Snapshot
	Formatted Formatted `json:"formatted"`
}

// NewResponse pairs a snapshot with its display prices.
func NewResponse(snap Snapshot) Response {
	return Response{
		Snapshot: snap,
		Formatted: Formatted{
			Subtotal:   money.FormatPrice(snap.TotalAmount),
			Shipping:   money.FormatPrice(snap.ShippingFee),
			OrderTotal: money.FormatPrice(snap.OrderTotal()),
		},
	}
}

type AddRequest struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
	Color  string `json:"color"`
	Image  string `json:"image"`
}

type ToggleRequest struct {
	Type Direction `json:"type"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, NewResponse(h.store.Snapshot()))
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "handler"),
		zap.String("method", "AddToCart"),
	)

	var req AddRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		utils.WriteJSONError(w, ErrMissingProductID.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.products.Product(ctx, req.ID)
	if err != nil {
		log.Error("failed to resolve product", zap.String("product_id", req.ID), zap.Error(err))
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	color := req.Color
	if color == "" && len(p.Colors) > 0 {
		color = p.Colors[0]
	}
	image := req.Image
	if image == "" {
		image = p.MainImage()
	}

	if err := h.store.AddToCart(ctx, *p, req.Amount, color, image); err != nil {
		log.Warn("add to cart rejected", zap.String("product_id", req.ID), zap.Error(err))
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, NewResponse(h.store.Snapshot()))
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveFromCart(r.Context(), r.PathValue("id"))
	utils.WriteJSON(w, http.StatusOK, NewResponse(h.store.Snapshot()))
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.ToggleAmount(r.Context(), r.PathValue("id"), req.Type); err != nil {
		utils.WriteJSONError(w, err.Error(), statusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, NewResponse(h.store.Snapshot()))
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(r.Context())
	utils.WriteJSON(w, http.StatusOK, NewResponse(h.store.Snapshot()))
}

type checkoutResponse struct {
	User *auth.User `json:"user"`
	Response
}

// HandleCheckout returns the order summary for the signed-in user. It is
// mounted behind RequireAuth.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFrom(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkoutResponse{
		User:     user,
		Response: NewResponse(h.store.Snapshot()),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrMissingProductID):
		return http.StatusBadRequest
	case errors.Is(err, ErrOutOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
