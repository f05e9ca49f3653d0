package wallet

import "errors"

var (
	ErrZeroDelta         = errors.New("wallet delta must be non-zero")
	ErrFailedGetBalance  = errors.New("failed to get wallet balance")
	ErrFailedGetLedger   = errors.New("failed to get wallet transactions")
	ErrUserNotAuthorized = errors.New("user not authenticated")
)
