package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/breno/product-api/internal/api/metrics"
	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

// Authenticate resolves the bearer token, if any, into a principal stored in
// the request context. Requests without a bearer token continue anonymously;
// the route policy decides whether that is acceptable.
func Authenticate(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return next(c)
			}

			login, err := tokens.Validate(token)
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("invalid").Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("rejected bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenValidation.Error())
			}

			user, err := users.FindByLogin(c.Request().Context(), login)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.TokenValidationsTotal.WithLabelValues("unknown_user").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenValidation.Error())
				}
				return err
			}

			metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
			ctx := domain.ContextWithPrincipal(c.Request().Context(), domain.NewPrincipal(*user))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
