package ports

import (
	"context"

	"github.com/breno/product-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, login, password, role string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (string, error)
}

// TokenService issues and validates bearer tokens.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	// Validate returns the token subject (the user's login).
	Validate(token string) (string, error)
}

// PasswordHasher is a one-way salted hash with constant-time verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}
