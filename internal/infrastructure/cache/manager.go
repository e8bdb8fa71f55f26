package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"
)

// Backend is a key/value store with per-entry TTL.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// Manager fronts the configured cache backend. Keys are hashed before they
// reach the backend so callers can use arbitrary logical keys.
type Manager struct {
	config  *config.CacheConfig
	backend Backend
}

// NewManager creates the cache manager for the configured backend. Returns
// (nil, nil) when caching is disabled.
func NewManager(cfg *config.Config) (*Manager, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("cache disabled")
		return nil, nil
	}

	var backend Backend
	var err error
	if cfg.Cache.RedisAddr != "" {
		backend, err = newRedisBackend(&cfg.Cache)
		if err != nil {
			return nil, err
		}
	} else {
		backend = newMemoryBackend(&cfg.Cache)
	}

	common.LogInfo("cache manager initialized",
		zap.String("backend", backendName(cfg.Cache.RedisAddr)),
		zap.Int("max_size", cfg.Cache.MaxSize),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	return &Manager{
		config:  &cfg.Cache,
		backend: backend,
	}, nil
}

func backendName(redisAddr string) string {
	if redisAddr != "" {
		return "redis"
	}
	return "memory"
}

// Get returns the cached value for a logical key, or a cache-miss error.
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	if m == nil {
		return "", common.ErrCacheDisabled
	}
	return m.backend.Get(ctx, m.hashKey(key))
}

// Set stores a value under a logical key using the configured TTL.
func (m *Manager) Set(ctx context.Context, key, value string) error {
	if m == nil {
		return nil
	}
	return m.backend.Set(ctx, m.hashKey(key), value, m.config.TTL)
}

// Close releases backend resources. Safe on a nil manager.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	return m.backend.Close()
}

func (m *Manager) hashKey(key string) string {
	digest := sha256.Sum256([]byte(key))
	return hex.EncodeToString(digest[:])
}
