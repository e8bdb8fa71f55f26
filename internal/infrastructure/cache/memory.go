package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-keeper/internal/infrastructure/config"
	"recipe-keeper/internal/pkg/common"
)

// memoryBackend is an in-process TTL cache with LRU eviction.
type memoryBackend struct {
	config *config.CacheConfig
	mu     sync.RWMutex
	store  map[string]cacheEntry
	stats  cacheStats
	done   chan struct{}
}

type cacheEntry struct {
	value       string
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

func newMemoryBackend(cfg *config.CacheConfig) *memoryBackend {
	b := &memoryBackend{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	go b.startCleanup()

	return b
}

// Get returns the cached value, expiring stale entries lazily.
func (b *memoryBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, exists := b.store[key]
	if !exists {
		b.stats.misses++
		return "", common.ErrCacheMiss
	}

	if time.Now().After(entry.expiresAt) {
		delete(b.store, key)
		b.stats.evictions++
		b.stats.misses++
		return "", common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	b.store[key] = entry
	b.stats.hits++

	return entry.value, nil
}

// Set stores a value, evicting expired then least-used entries when full.
func (b *memoryBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.store) >= b.config.MaxSize {
		evicted := b.cleanupLocked()
		if evicted > 0 {
			common.LogDebug("cache cleanup during set", zap.Int("evicted", evicted))
		}

		if len(b.store) >= b.config.MaxSize {
			b.evictLRULocked()
		}

		if len(b.store) >= b.config.MaxSize {
			b.stats.errors++
			common.LogWarn("cache full", zap.Int("size", len(b.store)))
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	b.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(ttl),
		createdAt:  now,
		lastAccess: now,
	}

	return nil
}

func (b *memoryBackend) startCleanup() {
	ticker := time.NewTicker(b.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			count := b.cleanupLocked()
			b.mu.Unlock()
			if count > 0 {
				common.LogDebug("cleaned up expired cache entries", zap.Int("count", count))
			}
		case <-b.done:
			return
		}
	}
}

func (b *memoryBackend) cleanupLocked() int {
	now := time.Now()
	count := 0

	for key, entry := range b.store {
		if now.After(entry.expiresAt) {
			delete(b.store, key)
			count++
			b.stats.evictions++
		}
	}

	return count
}

// evictLRULocked removes the entry with the fewest accesses, oldest access
// time breaking ties.
func (b *memoryBackend) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range b.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(b.store, oldestKey)
		b.stats.evictions++
	}
}

// Close stops the cleanup goroutine and drops all entries.
func (b *memoryBackend) Close() error {
	close(b.done)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = make(map[string]cacheEntry)
	common.LogInfo("memory cache closed",
		zap.Int64("hits", b.stats.hits),
		zap.Int64("misses", b.stats.misses),
		zap.Int64("evictions", b.stats.evictions),
	)
	return nil
}
