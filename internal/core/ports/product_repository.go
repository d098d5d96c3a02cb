package ports

import (
	"context"

	"github.com/breno/product-api/internal/core/domain"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts p as-is; the ID is assigned by the caller. Name
	// uniqueness is checked by the service before creating, not by the store.
	Create(ctx context.Context, p *domain.Product) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]*domain.Product, error)
	// Update overwrites name and value. It returns domain.ErrProductNotFound
	// when no row matched.
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// IdempotencyStore remembers which product a client-supplied key created.
type IdempotencyStore interface {
	// Reserve claims key for a new creation. It returns the product ID stored
	// under key and false when the key was already used.
	Reserve(ctx context.Context, key string) (existingID string, reserved bool, err error)
	Complete(ctx context.Context, key, productID string) error
	Release(ctx context.Context, key string) error
}
