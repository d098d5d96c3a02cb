package domain

import "errors"

// Authentication and authorization.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrAccessDenied       = errors.New("access denied")
	ErrTokenGeneration    = errors.New("token generation failed")
	ErrTokenValidation    = errors.New("invalid or expired token")
)

// Users.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateLogin = errors.New("user already registered with this login")
	ErrInvalidRole    = errors.New("invalid role")
)

// Products.
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateProductName = errors.New("product already exists with this name")
	ErrIdempotencyInFlight  = errors.New("a request with this idempotency key is still in progress")
)
