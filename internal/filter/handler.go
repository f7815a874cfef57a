package filter

import (
	"context"
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

// ProductSource supplies the catalog the filters run against.
type ProductSource interface {
	Products(ctx context.Context) ([]product.Product, error)
}

type Handler struct {
	state   *State
	catalog ProductSource
}

func NewHandler(state *State, catalog ProductSource) *Handler {
	return &Handler{state: state, catalog: catalog}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/filters", h.HandleGet)
	mux.HandleFunc("PATCH /api/filters", h.HandleUpdate)
	mux.HandleFunc("POST /api/filters/clear", h.HandleClear)
	mux.HandleFunc("GET /api/products/view", h.HandleView)
}

type stateResponse struct {
	Snapshot
	Options Options `json:"options"`
}

// UpdateRequest carries the fields to change; nil fields are left alone.
type UpdateRequest struct {
	Category     *string   `json:"category,omitempty"`
	Company      *string   `json:"company,omitempty"`
	Color        *string   `json:"color,omitempty"`
	MaxPrice     *int64    `json:"maxPrice,omitempty"`
	FreeShipping *bool     `json:"freeShipping,omitempty"`
	Search       *string   `json:"search,omitempty"`
	Sort         *SortKey  `json:"sort,omitempty"`
	View         *ViewMode `json:"view,omitempty"`
}

// Validate checks the request before any field is applied so that a bad
// request leaves the state untouched.
func (req UpdateRequest) Validate() error {
	if req.MaxPrice != nil && *req.MaxPrice < 0 {
		return ErrInvalidMaxPrice
	}
	if req.Sort != nil && !req.Sort.Valid() {
		return ErrInvalidSortKey
	}
	if req.View != nil && !req.View.Valid() {
		return ErrInvalidViewMode
	}
	return nil
}

type viewResponse struct {
	Products []product.Product `json:"products"`
	Total    int               `json:"total"`
	View     ViewMode          `json:"view"`
	Sort     SortKey           `json:"sort"`
	Filters  Criteria          `json:"filters"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	products, err := h.load(r.Context())
	if err != nil {
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, stateResponse{
		Snapshot: h.state.Snapshot(),
		Options:  BuildOptions(products),
	})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "UpdateFilters"),
	)

	var req UpdateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		log.Warn("rejected filter update", zap.Error(err))
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.load(r.Context()); err != nil {
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	if req.Category != nil {
		h.state.SetCategory(*req.Category)
	}
	if req.Company != nil {
		h.state.SetCompany(*req.Company)
	}
	if req.Color != nil {
		h.state.SetColor(*req.Color)
	}
	if req.MaxPrice != nil {
		_ = h.state.SetMaxPrice(*req.MaxPrice)
	}
	if req.FreeShipping != nil {
		h.state.SetFreeShipping(*req.FreeShipping)
	}
	if req.Search != nil {
		h.state.SetSearch(*req.Search)
	}
	if req.Sort != nil {
		_ = h.state.SetSort(*req.Sort)
	}
	if req.View != nil {
		_ = h.state.SetView(*req.View)
	}

	utils.WriteJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	products, err := h.load(r.Context())
	if err != nil {
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	h.state.ClearFilters(Bounds(products).Max)
	utils.WriteJSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	products, err := h.load(r.Context())
	if err != nil {
		utils.WriteJSONError(w, err.Error(), product.StatusFor(err))
		return
	}

	result := h.state.Apply(products)
	snap := h.state.Snapshot()

	utils.WriteJSON(w, http.StatusOK, viewResponse{
		Products: result,
		Total:    len(result),
		View:     snap.View,
		Sort:     snap.Sort,
		Filters:  snap.Criteria,
	})
}

// load fetches the catalog and seeds the state on first use.
func (h *Handler) load(ctx context.Context) ([]product.Product, error) {
	products, err := h.catalog.Products(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("failed loading catalog for filters", zap.Error(err))
		return nil, err
	}

	if h.state.Init(Bounds(products)) {
		logger.FromCtx(ctx).Debug("filter state initialized", zap.Int("catalog_size", len(products)))
	}
	return products, nil
}

