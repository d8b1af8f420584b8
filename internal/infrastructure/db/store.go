// Package db selects and opens the user store configured by STORE_DRIVER.
package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/user-accounts/internal/core/ports"
	"github.com/99minutos/user-accounts/internal/infrastructure/db/mongo"
	"github.com/99minutos/user-accounts/internal/infrastructure/db/postgres"
	"github.com/99minutos/user-accounts/internal/pkg/config"
)

// Store bundles the user repository with the lifecycle hooks of its backend.
type Store struct {
	Driver string
	Users  ports.UserRepository
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	case config.StorePostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}

	repo := mongo.NewUserRepository(database)
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	return &Store{
		Driver: config.StoreMongo,
		Users:  repo,
		ping:   func(ctx context.Context) error { return mongo.Ping(ctx, database) },
		close:  client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	conn, err := postgres.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.RunMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.Info().Msg("connected to PostgreSQL")

	return &Store{
		Driver: config.StorePostgres,
		Users:  postgres.NewUserRepository(conn),
		ping:   conn.PingContext,
		close:  func(context.Context) error { return conn.Close() },
	}, nil
}
