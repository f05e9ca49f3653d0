package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrProductRequired = errors.New("product ID is required")

	// -- Resource State --
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")

	// -- Database & Operation Failures --
	ErrFailedGetCart    = errors.New("failed to get cart")
	ErrFailedUpdateCart = errors.New("failed to update cart item")
	ErrFailedRemoveCart = errors.New("failed to remove cart item")
	ErrFailedClearCart  = errors.New("failed to clear cart")
)
