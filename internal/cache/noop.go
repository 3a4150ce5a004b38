package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoopCache satisfies Cache without storing anything. Wired in when no Redis
// is configured so callers never branch on cache presence.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Ping(context.Context) error { return nil }

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NoopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

func (NoopCache) SetJobSnapshot(context.Context, uuid.UUID, []byte, time.Duration) error { return nil }

func (NoopCache) GetJobSnapshot(context.Context, uuid.UUID) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 0, nil
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*NoopCache)(nil)
)
