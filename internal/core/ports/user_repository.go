package ports

import (
	"context"

	"github.com/breno/product-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByLogin returns domain.ErrUserNotFound when no user has this login.
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	// Create returns domain.ErrDuplicateLogin when the login is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
