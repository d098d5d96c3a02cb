package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/breno/product-api/internal/api"
	"github.com/breno/product-api/internal/api/handler"
	"github.com/breno/product-api/internal/api/middleware"
	"github.com/breno/product-api/internal/core/ports"
	"github.com/breno/product-api/internal/core/service"
	mongostore "github.com/breno/product-api/internal/infrastructure/db/mongo"
	"github.com/breno/product-api/internal/infrastructure/db/postgres"
	redisstore "github.com/breno/product-api/internal/infrastructure/db/redis"
	"github.com/breno/product-api/internal/pkg/config"
	"github.com/breno/product-api/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// stores groups the repositories selected by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	products ports.ProductRepository
	ready    []handler.Dependency
	close    func(context.Context)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "product-api",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		idem = redisstore.NewIdempotencyStore(rdb)
		st.ready = append(st.ready, handler.Dependency{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	} else {
		log.Info().Msg("REDIS_ADDR not set, Idempotency-Key headers are ignored")
	}

	if cfg.Auth.AllowAdminSignup {
		log.Warn().Msg("ADMIN self-registration is enabled")
	}

	tokens := service.NewTokenService(cfg.Auth.TokenSecret)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	e := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(st.users, tokens, hasher, cfg.Auth.AllowAdminSignup, logger.Component("auth")),
		Products: service.NewProductService(st.products, idem, logger.Component("products")),
		Tokens:   tokens,
		Users:    st.users,
		Policy:   middleware.NewPolicy(cfg.Products.PublicRead),
		Ready:    st.ready,
		Logger:   logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")
		return &stores{
			users:    mongostore.NewUserRepository(db),
			products: mongostore.NewProductRepository(db),
			ready: []handler.Dependency{{
				Name: "mongodb",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			}},
			close: func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil

	default:
		db, err := postgres.Open(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxOpenConns: cfg.Postgres.MaxOpenConns})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &stores{
			users:    postgres.NewUserRepository(db),
			products: postgres.NewProductRepository(db),
			ready: []handler.Dependency{{
				Name: "postgres",
				Ping: db.PingContext,
			}},
			close: func(context.Context) { _ = db.Close() },
		}, nil
	}
}
