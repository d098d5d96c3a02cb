package handler

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type productRequest struct {
	Name  string           `json:"name"  validate:"required,notblank,max=255"`
	Value *decimal.Decimal `json:"value" validate:"required,gte=0" swaggertype:"number"`
}

type link struct {
	Href string `json:"href"`
}

type productLinks struct {
	Self link `json:"self"`
}

type productResponse struct {
	IDProduct string       `json:"idProduct"`
	Name      string       `json:"name"`
	Value     json.Number  `json:"value" swaggertype:"number"`
	Links     productLinks `json:"_links"`
}

// createProductResponse is the envelope returned by POST /products.
type createProductResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    *productResponse `json:"data"`
}
