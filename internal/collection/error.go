package collection

import "errors"

var (
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	ErrNotFound          = errors.New("collection not found")
	ErrInvalidTransition = errors.New("invalid collection status transition")
	ErrNotSettleable     = errors.New("collection is not awaiting payment")

	ErrFailedCreate  = errors.New("failed to create collection")
	ErrFailedList    = errors.New("failed to list collections")
	ErrFailedUpdate  = errors.New("failed to update collection")
	ErrFailedSettle  = errors.New("failed to settle collection")
	ErrFailedQRCode  = errors.New("failed to generate pickup QR code")
	ErrFailedPayment = errors.New("failed to list payments")
)
