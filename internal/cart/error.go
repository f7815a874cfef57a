package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity  = errors.New("invalid cart quantity")
	ErrInvalidDirection = errors.New("toggle direction must be inc or dec")
	ErrMissingProductID = errors.New("product id is required")

	// -- Resource State --
	ErrOutOfStock = errors.New("product is out of stock")

	// -- Storage --
	ErrFailedDecodeCart = errors.New("failed to decode stored cart")
	ErrFailedEncodeCart = errors.New("failed to encode cart")
)
