package order

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Resource State --
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrOutOfStock        = errors.New("product out of stock")
	ErrProductNotFound   = errors.New("product not found")

	// -- Database & Operation Failures --
	ErrFailedCreateOrder = errors.New("failed to create order")
	ErrFailedGetOrders   = errors.New("failed to get orders")
	ErrFailedUpdate      = errors.New("failed to update order status")
)
