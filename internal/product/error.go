package product

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrFailedListProducts = errors.New("failed to list products")
	ErrFailedCreate       = errors.New("failed to create product")
)
