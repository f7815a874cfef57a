package storage

import "errors"

var (
	ErrEmptyKey    = errors.New("storage key is empty")
	ErrUnavailable = errors.New("storage is unavailable")
)
