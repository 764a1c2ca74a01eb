package cache

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryCache is the in-process fallback used when Redis is unavailable.
type MemoryCache struct {
	store   sync.Map
	metrics *CacheMetrics
	stop    chan struct{}
	once    sync.Once
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		metrics: NewCacheMetrics(),
		stop:    make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.metrics.RecordError()
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.store.Store(key, &cacheItem{
		value:      data,
		expiration: time.Now().Add(ttl),
	})
	c.metrics.RecordSet()
	return nil
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	item, exists := c.store.Load(key)
	if !exists {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	entry := item.(*cacheItem)
	if time.Now().After(entry.expiration) {
		c.store.Delete(key)
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(entry.value, dest); err != nil {
		c.metrics.RecordError()
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	c.metrics.RecordHit()
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	c.metrics.RecordDelete()
	return nil
}

func (c *MemoryCache) DeletePattern(pattern string) error {
	c.store.Range(func(key, value interface{}) bool {
		if matchPattern(key.(string), pattern) {
			c.store.Delete(key)
		}
		return true
	})
	return nil
}

func (c *MemoryCache) Exists(key string) (bool, error) {
	item, exists := c.store.Load(key)
	if !exists {
		return false, nil
	}
	if time.Now().After(item.(*cacheItem).expiration) {
		c.store.Delete(key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) Stats() map[string]interface{} {
	count := 0
	c.store.Range(func(_, _ interface{}) bool {
		count++
		return true
	})

	return map[string]interface{}{
		"type":             "memory",
		"items":            count,
		"metrics":          c.metrics.GetStats(),
		"hit_rate_percent": c.metrics.HitRate(),
	}
}

func (c *MemoryCache) Health() error {
	return nil
}

func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.store.Range(func(key, value interface{}) bool {
				if now.After(value.(*cacheItem).expiration) {
					c.store.Delete(key)
				}
				return true
			})
		}
	}
}

func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func matchPattern(text, pattern string) bool {
	if pattern == "*" {
		return true
	}

	if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(text) >= len(prefix) && text[:len(prefix)] == prefix
	}

	return text == pattern
}
