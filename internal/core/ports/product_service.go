package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/breno/product-api/internal/core/domain"
)

// ProductInput carries the writable fields of a product.
type ProductInput struct {
	Name  string
	Value decimal.Decimal
	// IdempotencyKey is optional and only honoured by CreateProduct.
	IdempotencyKey string
}

// ProductService defines use-case operations for products.
type ProductService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}
