package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/breno/product-api/internal/api/metrics"
	"github.com/breno/product-api/internal/core/domain"
	"github.com/breno/product-api/internal/core/ports"
)

type ProductService struct {
	repo   ports.ProductRepository
	idem   ports.IdempotencyStore
	logger zerolog.Logger
}

// NewProductService wires the product use cases. idem may be nil, in which
// case Idempotency-Key headers are ignored.
func NewProductService(repo ports.ProductRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *ProductService {
	return &ProductService{repo: repo, idem: idem, logger: logger}
}

// CreateProduct inserts a new product after checking that no product with the
// same name exists. When an idempotency key is supplied and already completed,
// the previously created product is returned without side effects. A key whose
// product has since been deleted is dropped and the create runs again.
func (s *ProductService) CreateProduct(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	key := strings.TrimSpace(in.IdempotencyKey)

	reserved := false
	if key != "" && s.idem != nil {
		existing, ok, err := s.claimKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		reserved = ok
	}

	created, err := s.create(ctx, name, in)
	if reserved {
		if err != nil {
			if relErr := s.idem.Release(ctx, key); relErr != nil {
				s.logger.Warn().Err(relErr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		} else if compErr := s.idem.Complete(ctx, key, created.ID); compErr != nil {
			s.logger.Warn().Err(compErr).Str("idempotency_key", key).Msg("failed to record idempotency key")
		}
	}
	return created, err
}

// claimKey reserves key for a new create. It returns the product to replay
// when the key was already completed, or reserved=false when the store is
// unavailable and the create should go ahead untracked.
func (s *ProductService) claimKey(ctx context.Context, key string) (*domain.Product, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existingID, ok, err := s.idem.Reserve(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, creating anyway")
			return nil, false, nil
		case ok:
			return nil, true, nil
		case existingID == "":
			return nil, false, domain.ErrIdempotencyInFlight
		}

		p, err := s.repo.FindByID(ctx, existingID)
		if err == nil {
			metrics.IdempotentReplaysTotal.Inc()
			s.logger.Info().Str("idempotency_key", key).Str("product_id", p.ID).Msg("idempotent replay")
			return p, false, nil
		}
		if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, false, err
		}

		s.logger.Info().Str("idempotency_key", key).Str("product_id", existingID).Msg("replayed product is gone, dropping key")
		if err := s.idem.Release(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			return nil, false, nil
		}
	}
	// The key was re-pointed at another deleted product before we could claim it.
	return nil, false, domain.ErrIdempotencyInFlight
}

func (s *ProductService) create(ctx context.Context, name string, in ports.ProductInput) (*domain.Product, error) {
	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateProductName
	}

	created, err := s.repo.Create(ctx, &domain.Product{
		ID:    uuid.NewString(),
		Name:  name,
		Value: in.Value.Round(2),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create product")
		return nil, err
	}

	metrics.ProductMutationsTotal.WithLabelValues("create").Inc()
	s.logger.Info().Str("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return created, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// UpdateProduct overwrites name and value. Name uniqueness is not re-checked.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrProductNotFound
	}

	updated, err := s.repo.Update(ctx, &domain.Product{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Value: in.Value.Round(2),
	})
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		}
		return nil, err
	}

	metrics.ProductMutationsTotal.WithLabelValues("update").Inc()
	return updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrProductNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ProductMutationsTotal.WithLabelValues("delete").Inc()
	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
