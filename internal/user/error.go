package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrFailedRegister     = errors.New("failed to register user")
	ErrJWTSecretMissing   = errors.New("JWT_SECRET is not set")
	ErrInvalidToken       = errors.New("invalid token")
)
