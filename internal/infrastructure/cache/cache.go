package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/council-xenith/internal/config"
)

// ErrNotFound is returned by Get when the key is missing or expired.
var ErrNotFound = errors.New("cache: key not found")

// Client is a string key/value store with per-key expiry.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// TakeIf deletes key only when its value equals expected and reports
	// whether it did. Returns ErrNotFound when key is missing or expired.
	TakeIf(ctx context.Context, key, expected string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// New builds the cache driver selected by cfg.CacheDriver and checks it is reachable.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.CacheDriver {
	case "redis":
		return NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case "memory":
		return NewMemory(cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.CacheDriver)
	}
}

func prefixed(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
