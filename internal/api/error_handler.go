package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/breno/product-api/internal/core/domain"
)

const (
	msgAccessDenied = "Access Denied: You don't have permission to access this resource."
	msgInternal     = "An unexpected error occurred"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("http error")
			return he.Code, msgInternal
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrTokenValidation):
		return http.StatusUnauthorized, domain.ErrTokenValidation.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusForbidden, msgAccessDenied
	case errors.Is(err, domain.ErrDuplicateLogin):
		return http.StatusBadRequest, "User already registered with this login."
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "role must be ADMIN or USER"
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found."
	case errors.Is(err, domain.ErrDuplicateProductName):
		return http.StatusConflict, "Product already exists with this name"
	case errors.Is(err, domain.ErrIdempotencyInFlight):
		return http.StatusConflict, "A request with this Idempotency-Key is still in progress"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, msgInternal
}
