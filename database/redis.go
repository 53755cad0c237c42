package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when addr is empty or the server does not answer,
// in which case callers run without a cache.
func ConnectRedis(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		slog.Warn("REDIS_ADDR not set, report caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis unreachable, report caching disabled", "addr", addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	slog.Info("redis connected", "addr", addr)
	return rdb
}
