package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// RedisCache stores JSON-encoded values in Redis. All operations go through
// a circuit breaker so a dead Redis degrades to cache misses instead of
// latency on every request.
type RedisCache struct {
	client         *redis.Client
	metrics        *CacheMetrics
	circuitBreaker *CircuitBreaker
}

func NewRedisCache(config *CacheConfig) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return NewRedisCacheWithClient(client)
}

func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:         client,
		metrics:        NewCacheMetrics(),
		circuitBreaker: NewCircuitBreaker(DefaultCircuitBreakerConfig()),
	}
}

func (c *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	err = c.circuitBreaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return c.client.Set(ctx, key, data, ttl).Err()
	})
	if err != nil {
		c.metrics.RecordError()
		return err
	}

	c.metrics.RecordSet()
	return nil
}

func (c *RedisCache) Get(key string, dest interface{}) error {
	var data []byte
	err := c.circuitBreaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		result, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrCacheMiss
		}
		if err != nil {
			return err
		}
		data = result
		return nil
	})

	if err == ErrCacheMiss {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}
	if err != nil {
		c.metrics.RecordError()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.RecordError()
		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	c.metrics.RecordHit()
	return nil
}

func (c *RedisCache) Delete(key string) error {
	err := c.circuitBreaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return c.client.Del(ctx, key).Err()
	})
	if err != nil {
		c.metrics.RecordError()
		return err
	}

	c.metrics.RecordDelete()
	return nil
}

func (c *RedisCache) DeletePattern(pattern string) error {
	return c.circuitBreaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		return iter.Err()
	})
}

func (c *RedisCache) Exists(key string) (bool, error) {
	var exists bool
	err := c.circuitBreaker.Execute(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		n, err := c.client.Exists(ctx, key).Result()
		exists = n > 0
		return err
	})
	return exists, err
}

func (c *RedisCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"type":             "redis",
		"metrics":          c.metrics.GetStats(),
		"hit_rate_percent": c.metrics.HitRate(),
		"circuit_breaker":  c.circuitBreaker.GetStats(),
	}

	poolStats := c.client.PoolStats()
	stats["pool"] = map[string]interface{}{
		"hits":        poolStats.Hits,
		"misses":      poolStats.Misses,
		"total_conns": poolStats.TotalConns,
		"idle_conns":  poolStats.IdleConns,
	}

	return stats
}

func (c *RedisCache) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
