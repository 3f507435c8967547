package ratelimit

import (
	"strings"

	"github.com/getmarketingos/marketingos/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(provideRedisClient),
	fx.Provide(NewLocker),
)

// provideRedisClient returns nil when redis is not configured; consumers
// treat a nil Locker as "no distributed locking".
func provideRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}
