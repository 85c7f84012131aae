package ratelimit

import (
	"strings"

	"github.com/kasirhq/kasira/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(
		ProvideRedisClient,
		NewGuard,
	),
)

// ProvideRedisClient returns nil when no address is configured; consumers
// treat a nil client as "feature off".
func ProvideRedisClient(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
}
