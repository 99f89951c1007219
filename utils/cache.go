// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"taskilo/config"

	"github.com/go-redis/redis/v8"
)

// NewCacheClient connects the generic Redis cache client (REDIS_CACHE_DB).
func NewCacheClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (Cache): %w", err)
	}
	return client, nil
}
