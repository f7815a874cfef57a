package selection

import (
	"context"
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

type ProductLookup interface {
	Product(ctx context.Context, id string) (*product.SingleProduct, error)
}

// Cart is the part of the cart store the add-to-cart action needs.
type Cart interface {
	AddToCart(ctx context.Context, p product.SingleProduct, amount int, color, image string) error
	Snapshot() cart.Snapshot
}

type Handler struct {
	store    *Store
	products ProductLookup
	cart     Cart
}

func NewHandler(store *Store, products ProductLookup, c Cart) *Handler {
	return &Handler{store: store, products: products, cart: c}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/selection", h.HandleGet)
	mux.HandleFunc("PATCH /api/selection", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/selection", h.HandleReset)
	mux.HandleFunc("PUT /api/selection/product/{id}", h.HandleSetProduct)
	mux.HandleFunc("POST /api/selection/increase", h.HandleIncrease)
	mux.HandleFunc("POST /api/selection/decrease", h.HandleDecrease)
	mux.HandleFunc("POST /api/selection/add-to-cart", h.HandleAddToCart)
}

type UpdateRequest struct {
	Amount *int    `json:"amount,omitempty"`
	Color  *string `json:"color,omitempty"`
	Image  *string `json:"image,omitempty"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) HandleSetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		logger.FromCtx(r.Context()).Error("failed to load product for selection",
			zap.String("product_id", r.PathValue("id")),
			zap.Error(err),
		)
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	h.store.SetProduct(*p)
	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Amount == nil && req.Color == nil && req.Image == nil {
		utils.WriteJSONError(w, ErrInvalidRequest.Error(), http.StatusBadRequest)
		return
	}

	if req.Amount != nil {
		h.store.SetAmount(*req.Amount)
	}
	if req.Color != nil {
		h.store.SetColor(*req.Color)
	}
	if req.Image != nil {
		h.store.SetImage(*req.Image)
	}

	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) HandleIncrease(w http.ResponseWriter, r *http.Request) {
	h.store.IncreaseAmount()
	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) HandleDecrease(w http.ResponseWriter, r *http.Request) {
	h.store.DecreaseAmount()
	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.store.Reset()
	utils.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

// HandleAddToCart copies the current selection into the cart. The selection
// itself is left as is.
func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "handler"),
		zap.String("method", "SelectionAddToCart"),
	)

	sel := h.store.Snapshot()
	if sel.ID == "" {
		utils.WriteJSONError(w, ErrNoProduct.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.products.Product(ctx, sel.ID)
	if err != nil {
		log.Error("failed to resolve selected product", zap.String("product_id", sel.ID), zap.Error(err))
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	if err := h.cart.AddToCart(ctx, *p, sel.Amount, sel.Color, sel.Image); err != nil {
		log.Warn("selection rejected by cart", zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, cart.ErrOutOfStock) {
			status = http.StatusConflict
		}
		utils.WriteJSONError(w, err.Error(), status)
		return
	}

	utils.WriteJSON(w, http.StatusOK, cart.NewResponse(h.cart.Snapshot()))
}
