package handler

import (
	"encoding/json"

	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

const productsPath = "/products"

// --- Request → Service input ---

func toProductInput(req productRequest, idempotencyKey string) ports.ProductInput {
	in := ports.ProductInput{Name: req.Name, IdempotencyKey: idempotencyKey}
	if req.Value != nil {
		in.Value = *req.Value
	}
	return in
}

// --- Service result → HTTP response ---

// toProductResponse renders p with a self link pointing at href.
func toProductResponse(p *domain.Product, href string) productResponse {
	return productResponse{
		IDProduct: p.ID,
		Name:      p.Name,
		Value:     json.Number(p.Value.String()),
		Links:     productLinks{Self: link{Href: href}},
	}
}

func productHref(id string) string {
	return productsPath + "/" + id
}
