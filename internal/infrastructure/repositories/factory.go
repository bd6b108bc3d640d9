package repositories

import (
	"context"
	"time"

	"srtmon/internal/core/ports"
	"srtmon/internal/infrastructure/repositories/memory"
	redisrepo "srtmon/internal/infrastructure/repositories/redis"
	"srtmon/pkg/config"
	"srtmon/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates slot stores with fallback support
type RepositoryFactory struct {
	useRedis    bool
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

// NewRepositoryFactory connects to Redis when enabled, falling back to memory
// when the connection fails.
func NewRepositoryFactory(cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		useRedis: cfg.Redis.Enabled,
		logger:   logger,
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewRedisClient(
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			retry.Config{
				MaxAttempts:  cfg.Redis.ConnectAttempts,
				InitialDelay: cfg.Redis.ConnectBackoff,
				MaxDelay:     5 * time.Second,
				Multiplier:   2,
			},
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory slot store",
				"error", err,
			)
			factory.useRedis = false
		} else {
			factory.redisClient = client
			logger.Info("using Redis slot store")
		}
	}

	if !factory.useRedis {
		logger.Info("using memory slot store")
	}

	return factory, nil
}

// UsesRedis reports whether slots are kept in Redis
func (f *RepositoryFactory) UsesRedis() bool {
	return f.useRedis && f.redisClient != nil
}

// CreateSlotStore creates a slot store (Redis or memory with fallback)
func (f *RepositoryFactory) CreateSlotStore() ports.SlotStore {
	if f.UsesRedis() {
		return redisrepo.NewRedisSlotStore(f.redisClient)
	}
	return memory.NewMemorySlotStore()
}

// Close closes Redis connection if used
func (f *RepositoryFactory) Close() error {
	if f.redisClient != nil {
		err := redisrepo.CloseRedisClient(f.redisClient)
		f.redisClient = nil
		return err
	}
	return nil
}

// HealthCheck checks Redis connection health
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.UsesRedis() {
		return f.redisClient.Ping(ctx).Err()
	}
	return nil
}
