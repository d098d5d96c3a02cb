package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/breno/product-api/internal/api/metrics"
	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo             ports.UserRepository
	tokens           ports.TokenService
	hasher           ports.PasswordHasher
	allowAdminSignup bool
	log              zerolog.Logger

	// dummyHash is compared against when the login is unknown so both
	// failure paths spend the same bcrypt work. Empty when hashing it failed.
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	allowAdminSignup bool,
	log zerolog.Logger,
) *AuthService {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		log.Error().Err(err).Msg("failed to precompute dummy password hash")
	}
	return &AuthService{
		repo:             repo,
		tokens:           tokens,
		hasher:           hasher,
		allowAdminSignup: allowAdminSignup,
		log:              log,
		dummyHash:        dummy,
	}
}

// Register creates a user with the caller-supplied role.
func (s *AuthService) Register(ctx context.Context, login, password, role string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if r == domain.RoleAdmin {
		if !s.allowAdminSignup {
			return nil, domain.ErrAccessDenied
		}
		s.log.Warn().Str("login", login).Msg("self-registration with ADMIN role")
	}

	_, err = s.repo.FindByLogin(ctx, login)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateLogin
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Login:        login,
		PasswordHash: hash,
		Role:         r,
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(r)).Inc()
	s.log.Info().Str("login", created.Login).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and returns a signed token. Unknown logins
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(s.dummyHash, password)
			metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
			return "", domain.ErrInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return "", err
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("login", user.Login).Msg("failed to issue token")
		return "", err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return token, nil
}

// burnHash spends the work of a password check for a login that does not exist.
func (s *AuthService) burnHash(password string) {
	if s.dummyHash != "" {
		s.hasher.Verify(s.dummyHash, password)
		return
	}
	_, _ = s.hasher.Hash(password)
}
