package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory implements Client in-process. Intended for development and tests.
type Memory struct {
	c      *gocache.Cache
	prefix string
	takeMu sync.Mutex
}

func NewMemory(prefix string) *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, time.Minute), prefix: prefix}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(prefixed(m.prefix, key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

// Set stores value; a zero ttl never expires.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(prefixed(m.prefix, key), value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(prefixed(m.prefix, key))
	return nil
}

func (m *Memory) TakeIf(_ context.Context, key, expected string) (bool, error) {
	k := prefixed(m.prefix, key)
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	v, ok := m.c.Get(k)
	if !ok {
		return false, ErrNotFound
	}
	if s, _ := v.(string); s != expected {
		return false, nil
	}
	m.c.Delete(k)
	return true, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
