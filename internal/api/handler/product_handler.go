package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// ProductHandler handles HTTP requests for product operations.
type ProductHandler struct {
	service ports.ProductService
	log     zerolog.Logger
}

func NewProductHandler(service ports.ProductService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{service: service, log: log}
}

// List handles GET /products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   productResponse
// @Success      204  "No products registered"
// @Failure      401  {object}  errorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return c.NoContent(http.StatusNoContent)
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, productHref(p.ID)))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id (uuid)"
// @Success      200  {object}  productResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	// A single product links back to the collection.
	return c.JSON(http.StatusOK, toProductResponse(p, productsPath))
}

// Create handles POST /products.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string          false  "Replays the original response for 24h"
// @Param        body             body      productRequest  true   "Product"
// @Success      201              {object}  createProductResponse
// @Failure      400              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  createProductResponse
// @Failure      500              {object}  createProductResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := c.Request().Header.Get(headerIdempotencyKey)
	p, err := h.service.CreateProduct(c.Request().Context(), toProductInput(req, key))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateProductName):
			return c.JSON(http.StatusConflict, createProductResponse{
				Status:  "error",
				Message: "Product already exists with this name",
			})
		case errors.Is(err, domain.ErrIdempotencyInFlight):
			return c.JSON(http.StatusConflict, createProductResponse{
				Status:  "error",
				Message: "A request with this Idempotency-Key is still in progress",
			})
		}
		h.log.Error().Err(err).Str("name", req.Name).Msg("create product failed")
		return c.JSON(http.StatusInternalServerError, createProductResponse{
			Status:  "error",
			Message: "Internal error while creating the product",
		})
	}

	resp := toProductResponse(p, productHref(p.ID))
	return c.JSON(http.StatusCreated, createProductResponse{
		Status:  "success",
		Message: "Product created successfully",
		Data:    &resp,
	})
}

// Update handles PUT /products/:id.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Product id (uuid)"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), toProductInput(req, ""))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p, productHref(p.ID)))
}

// Delete handles DELETE /products/:id.
//
// @Summary      Delete a product
// @Tags         products
// @Produce      plain
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id (uuid)"
// @Success      200  {string}  string  "Product deleted."
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.String(http.StatusOK, "Product deleted.")
}
