package product

import (
	"errors"
	"net/http"

	"storefront-be/internal/utils"
)

type Handler struct {
	catalog *Catalog
}

func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.HandleList)
	mux.HandleFunc("GET /api/products/featured", h.HandleFeatured)
	mux.HandleFunc("GET /api/products/{id}", h.HandleGet)
}

type listResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		utils.WriteJSONError(w, err.Error(), StatusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, listResponse{
		Products: products,
		Count:    len(products),
		Error:    h.catalog.LastError(),
	})
}

func (h *Handler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		utils.WriteJSONError(w, err.Error(), StatusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, listResponse{
		Products: products,
		Count:    len(products),
	})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteJSONError(w, err.Error(), StatusFor(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}

// StatusFor maps catalog errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
