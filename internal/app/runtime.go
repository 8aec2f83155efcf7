package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"supplyfin/internal/infrastructure/cache"
	"supplyfin/internal/infrastructure/config"
	"supplyfin/internal/infrastructure/storage/memory"
	"supplyfin/internal/infrastructure/storage/postgres"
	"supplyfin/pkg/logger"
)

// Runtime owns the connections opened for one process.
type Runtime struct {
	Repos    Repositories
	Services *Services

	// Pool and Redis are nil when the backend is not in use.
	Pool  *postgres.Pool
	Redis *redis.Client
}

// Open connects the storage backend selected by cfg and wires the services.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		rt.Repos = MemoryRepositories(memory.New())

	default:
		poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN())
		poolCfg.ApplicationName = cfg.App.Name
		poolCfg.MaxConns = cfg.Database.MaxConns
		poolCfg.MinConns = cfg.Database.MinConns
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		poolCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		rt.Pool = pool
		rt.Repos = PostgresRepositories(postgres.NewTxManager(pool))
		logger.Info(ctx, "database connection established",
			"host", cfg.Database.Host,
			"db", cfg.Database.DBName,
		)
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = client
		rt.Repos.FreeDays = cache.NewFreeDays(rt.Repos.FreeDays, client, cfg.Redis.TTL)
		logger.Info(ctx, "redis free-day cache enabled", "addr", cfg.Redis.Addr(), "ttl", cfg.Redis.TTL.String())
	}

	rt.Services = NewServices(rt.Repos, cfg.Calendar.SearchHorizon)
	return rt, nil
}

// Close releases every open connection.
func (r *Runtime) Close() {
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
}
