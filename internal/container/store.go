package container

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/config"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/internal/infrastructure/cache"
	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
	mongoinfra "github.com/oksasatya/go-account-service/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/go-account-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

const connectTimeout = 10 * time.Second

// OpenUserRepository connects the backend selected by STORE_DRIVER, wraps it
// with the Redis cache when REDIS_ADDR is set, and returns a cleanup func.
func OpenUserRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, func(), error) {
	base, closeBase, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisAddr == "" {
		return base, closeBase, nil
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// the cache fails open, so an unreachable Redis only costs latency
		logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis ping failed; user cache will fall through")
	}
	logger.WithFields(logrus.Fields{"addr": cfg.RedisAddr, "ttl": cfg.UserCacheTTL}).Info("user cache enabled")

	cleanup := func() {
		_ = rdb.Close()
		closeBase()
	}
	return cache.NewUserRepository(base, rdb, cfg.UserCacheTTL, logger), cleanup, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repo.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		return memory.NewUserRepository(), func() {}, nil

	case config.StoreMongo:
		c, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongoinfra.NewClient(c, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoUsersCollection)
		users := mongoinfra.NewUserRepository(coll)
		if err := users.EnsureIndexes(c); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.WithFields(logrus.Fields{"database": cfg.MongoDatabase, "collection": cfg.MongoUsersCollection}).Info("mongo user store ready")
		return users, func() {
			dc, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer dcancel()
			_ = client.Disconnect(dc)
		}, nil

	case config.StorePostgres:
		dsn := cfg.PostgresDSN()
		if err := pginfra.RunMigrations(dsn, cfg.MigrationsDir, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := pginfra.NewPool(ctx, dsn, pginfra.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnLifetime: cfg.DBMaxConnLife,
			PingTimeout:     connectTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.WithField("database", cfg.DBName).Info("postgres user store ready")
		return pginfra.NewUserRepository(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
