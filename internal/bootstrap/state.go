package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	// Import pgx driver for database/sql compatibility.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mizan-mobiles/storefront-go/config"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/filestate"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/memstate"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/pgstate"
	"github.com/mizan-mobiles/storefront-go/internal/adapters/redisstate"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
)

// StateStoreResult carries the selected state store plus any connections the
// caller must close on shutdown.
type StateStoreResult struct {
	Store ports.StateStore
	Redis *redis.Client
	DB    *sql.DB
}

// Close releases whatever connections the selected backend opened.
func (r *StateStoreResult) Close() error {
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	if r.DB != nil {
		if err := r.DB.Close(); err != nil {
			return fmt.Errorf("close db: %w", err)
		}
	}
	return nil
}

// NewStateStore selects and initializes the durable state store from
// configuration. The owner scopes Postgres rows; the other backends ignore
// it.
func NewStateStore(ctx context.Context, cfg *config.StorageConfig, owner string, logger *slog.Logger) (*StateStoreResult, error) {
	switch cfg.Backend {
	case config.StorageBackendFile:
		store, err := filestate.New(cfg.File.Dir)
		if err != nil {
			return nil, fmt.Errorf("init file state store: %w", err)
		}
		return &StateStoreResult{Store: store}, nil

	case config.StorageBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return &StateStoreResult{
			Store: redisstate.NewWithPrefix(client, cfg.Redis.KeyPrefix),
			Redis: client,
		}, nil

	case config.StorageBackendPostgres:
		db, err := sql.Open("pgx", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err = pgstate.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate state table: %w", err)
		}
		store, err := pgstate.New(db, owner)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &StateStoreResult{Store: store, DB: db}, nil

	case config.StorageBackendMemory:
		logger.Warn("using in-memory state store, state will not survive restarts")
		return &StateStoreResult{Store: memstate.New()}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
