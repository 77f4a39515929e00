// Package redisprobe reports whether the configured Redis is reachable.
package redisprobe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"tenancypack/internal/config"
)

const defaultTimeout = time.Second

// Probe pings Redis. A Probe without a client is always ready.
type Probe struct {
	client  *redis.Client
	timeout time.Duration
}

// New returns a probe for cfg; no client is created when Addr is empty.
func New(cfg config.RedisConfig) *Probe {
	if cfg.Addr == "" {
		return &Probe{}
	}
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.RateLimitDB,
	}))
}

func NewWithClient(client *redis.Client) *Probe {
	return &Probe{client: client, timeout: defaultTimeout}
}

// Ready pings Redis with a short timeout.
func (p *Probe) Ready(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Ping(ctx).Err()
}

func (p *Probe) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
