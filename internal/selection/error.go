package selection

import "errors"

var (
	ErrNoProduct      = errors.New("no product selected")
	ErrInvalidRequest = errors.New("selection update needs amount, color or image")
)
