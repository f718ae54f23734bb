// Package providercache is the long-TTL cache for raw provider responses
// (default seven days). It is best-effort: any backend failure is logged and
// the request proceeds as if the cache were empty.
package providercache

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/gtsearch/parcel-risk/internal/observability"
)

// Memory is the in-process variant built on go-cache.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{c: gocache.New(ttl, ttl/2)}
}

func (m *Memory) Get(key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		observability.IncCacheMiss("provider")
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		observability.IncCacheMiss("provider")
		return nil, false
	}
	observability.IncCacheHit("provider")
	return b, true
}

func (m *Memory) Set(key string, val []byte) {
	m.c.SetDefault(key, val)
}

// Redis is the shared variant for multi-instance deployments.
type Redis struct {
	cli       *redis.Client
	logger    *slog.Logger
	ttl       time.Duration
	opTimeout time.Duration
}

func NewRedis(addr string, ttl, opTimeout time.Duration, logger *slog.Logger) *Redis {
	return &Redis{
		cli:       redis.NewClient(&redis.Options{Addr: addr}),
		logger:    logger,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (r *Redis) withTimeout() (context.Context, context.CancelFunc) {
	if r.opTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.opTimeout)
}

func (r *Redis) Get(key string) ([]byte, bool) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	b, err := r.cli.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			observability.IncCacheError("provider")
			r.logger.Warn("provider cache read failed", "key", key, "err", err)
		} else {
			observability.IncCacheMiss("provider")
		}
		return nil, false
	}
	observability.IncCacheHit("provider")
	return b, true
}

func (r *Redis) Set(key string, val []byte) {
	ctx, cancel := r.withTimeout()
	defer cancel()

	if err := r.cli.Set(ctx, key, val, r.ttl).Err(); err != nil {
		observability.IncCacheError("provider")
		r.logger.Warn("provider cache write failed", "key", key, "err", err)
	}
}

func (r *Redis) Close() error {
	return r.cli.Close()
}
