package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/breno/product-api/internal/core/domain"
)

const (
	TokenIssuer     = "auth-api"
	DefaultTokenTTL = 2 * time.Hour
)

// TokenService issues and validates HS256 bearer tokens. It holds no state
// besides the immutable secret, so one instance is shared by all requests.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenTTL overrides the validity window of issued tokens.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token whose subject is the user's login.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("%w: signing secret is not configured", domain.ErrTokenGeneration)
	}
	if user == nil || strings.TrimSpace(user.Login) == "" {
		return "", fmt.Errorf("%w: subject is empty", domain.ErrTokenGeneration)
	}

	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   user.Login,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Validate checks signature, issuer and expiry and returns the subject.
// Every failure wraps domain.ErrTokenValidation; callers must not expose
// the underlying cause.
func (s *TokenService) Validate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(s.secret) == 0 {
		return "", domain.ErrTokenValidation
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTokenValidation, err)
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", domain.ErrTokenValidation
	}
	return claims.Subject, nil
}
