package product

import "errors"

var (
	// -- Upstream feed --
	ErrUpstreamStatus = errors.New("catalog endpoint returned non-success status")
	ErrInvalidPayload = errors.New("catalog payload is not a product list")
	ErrInvalidProduct = errors.New("invalid product record")

	// -- Lookups --
	ErrProductNotFound = errors.New("product not found")
	ErrMissingID       = errors.New("product id is required")
)
