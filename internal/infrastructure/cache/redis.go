package cache

import (
	"context"
	"log"

	"github.com/poscore/transaction-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates the cache-tier client with bounded timeouts so a
// stalled cache call falls through to the breaker instead of hanging the
// request
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     100,
		MinIdleConns: 10,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		// The cart store falls back to the durable tier, so a cold cache is
		// a warning, not a startup failure.
		log.Printf("Warning: Redis not reachable at startup: %v", err)
	}

	return client
}
