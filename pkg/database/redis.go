package database

import (
	"context"
	"fmt"
	"time"

	"github.com/daryanfreelancer/ead-platform-portfolio-sub002/internal/config"
	"github.com/go-redis/redis/v8"
)

// InitRedis connects the cache used for the course catalog and certificate
// verification. The ping is bounded so a dead redis fails fast at boot
// instead of hanging it.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
