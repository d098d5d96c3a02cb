package domain

import "github.com/shopspring/decimal"

// Product is the catalog item managed through the CRUD endpoints.
type Product struct {
	ID    string          `json:"idProduct"`
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}
