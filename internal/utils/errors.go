package utils

import "errors"

// Common application errors used across services.
var (
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrStorageFailure     = errors.New("STORAGE_FAILURE")
	ErrNoDepletedProducts = errors.New("NO_DEPLETED_PRODUCTS")
	ErrShareNotFound      = errors.New("SHARE_NOT_FOUND")
	ErrShareUnavailable   = errors.New("SHARE_UNAVAILABLE")
)
