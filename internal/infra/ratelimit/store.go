package ratelimit

import (
	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"

	"tenancypack/internal/config"
	"tenancypack/internal/infra/logging"
)

// NewStore returns the limiter storage: Redis when an address is configured
// and reachable, otherwise process memory.
func NewStore(cfg config.RedisConfig) (store fiber.Storage) {
	store = memoryStorage.New()
	if cfg.Addr == "" {
		return store
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Redis limiter store init panicked, falling back to memory", "panic", r)
		}
	}()
	store = redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.Addr},
		Database: cfg.RateLimitDB,
	})
	logging.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.RateLimitDB)
	return store
}
