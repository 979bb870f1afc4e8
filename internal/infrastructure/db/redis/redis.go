package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/persome/account-system/internal/infrastructure/config"
)

// connectTimeout bounds both the dial and the connectivity ping. Session
// reads sit on the request path, so a hung Redis should fail fast.
const connectTimeout = 5 * time.Second

// Connect dials Redis from the service configuration and verifies
// connectivity with a ping before handing the client out.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		DialTimeout: connectTimeout,
		ReadTimeout: connectTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
