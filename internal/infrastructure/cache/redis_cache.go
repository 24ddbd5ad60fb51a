package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/domain/entities"
	"github.com/k-shtanenko/bike-rental-dashboard/internal/pkg/logger"
)

const (
	keyPrefix  = "bike-dashboard:"
	metaSuffix = ":meta"
	scanCount  = 100
)

type RedisOptions struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// RedisCache stores payload bytes under the prefixed key and the entry
// metadata in a hash next to it.
type RedisCache struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisCache(opts RedisOptions) (*RedisCache, error) {
	log := logger.Component("redis_cache")

	if opts.PoolSize <= 0 {
		opts.PoolSize = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     opts.PoolSize,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infof("Redis cache connected to %s:%d (db %d)", opts.Host, opts.Port, opts.DB)
	return newRedisCacheWithClient(client, log), nil
}

func newRedisCacheWithClient(client *redis.Client, log logger.Logger) *RedisCache {
	return &RedisCache{client: client, logger: log}
}

func (r *RedisCache) Get(ctx context.Context, key string) (entities.APICacheEntity, error) {
	dataKey := r.dataKey(key)
	data, err := r.client.Get(ctx, dataKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}

	meta, err := r.client.HGetAll(ctx, metaKey(dataKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata for %s: %w", key, err)
	}

	entry := &entities.APICache{
		ID:             meta["id"],
		CacheKey:       key,
		CacheType:      meta["cache_type"],
		Data:           data,
		ContentType:    meta["content_type"],
		FileName:       meta["file_name"],
		ExpiresAt:      parseTime(meta["expires_at"]),
		HitCount:       parseInt(meta["hit_count"]),
		CreatedAt:      parseTime(meta["created_at"]),
		LastAccessedAt: parseTime(meta["last_accessed_at"]),
	}

	go r.updateAccessStats(dataKey)

	return entry, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, entry entities.APICacheEntity, ttl time.Duration) error {
	dataKey := r.dataKey(key)
	meta := map[string]interface{}{
		"id":               entry.GetID(),
		"cache_type":       entry.GetCacheType(),
		"content_type":     entry.GetContentType(),
		"file_name":        entry.GetFileName(),
		"expires_at":       entry.GetExpiresAt().Format(time.RFC3339),
		"hit_count":        entry.GetHitCount(),
		"created_at":       entry.GetCreatedAt().Format(time.RFC3339),
		"last_accessed_at": entry.GetLastAccessedAt().Format(time.RFC3339),
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dataKey, entry.GetData(), ttl)
		pipe.HSet(ctx, metaKey(dataKey), meta)
		pipe.Expire(ctx, metaKey(dataKey), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}

	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	dataKey := r.dataKey(key)
	if err := r.client.Del(ctx, dataKey, metaKey(dataKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}

// DeleteByPattern removes every entry whose unprefixed key matches the glob
// pattern, together with its metadata hash.
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	var deleted int64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.dataKey(pattern), scanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			targets := make([]string, 0, len(keys)*2)
			for _, key := range keys {
				targets = append(targets, key, metaKey(key))
			}
			count, err := r.client.Del(ctx, targets...).Result()
			if err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Debugf("Deleted %d Redis keys matching %s", deleted, pattern)
	return nil
}

func (r *RedisCache) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis ping failed: %w", err)
	}

	testKey := keyPrefix + "healthcheck:" + time.Now().Format("20060102150405")
	testValue := "ok"

	if err := r.client.Set(ctx, testKey, testValue, 10*time.Second).Err(); err != nil {
		return fmt.Errorf("Redis set test failed: %w", err)
	}

	val, err := r.client.Get(ctx, testKey).Result()
	if err != nil {
		return fmt.Errorf("Redis get test failed: %w", err)
	}
	if val != testValue {
		return fmt.Errorf("Redis test value mismatch")
	}

	return nil
}

func (r *RedisCache) Close() error {
	r.logger.Info("Closing Redis cache...")
	return r.client.Close()
}

func (r *RedisCache) dataKey(key string) string {
	return keyPrefix + key
}

func metaKey(dataKey string) string {
	return dataKey + metaSuffix
}

// updateAccessStats runs after the request returns, so it carries its own
// deadline instead of the request context.
func (r *RedisCache) updateAccessStats(dataKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := metaKey(dataKey)
	if err := r.client.HIncrBy(ctx, key, "hit_count", 1).Err(); err != nil {
		r.logger.Debugf("Failed to update hit count for %s: %v", dataKey, err)
		return
	}
	r.client.HSet(ctx, key, "last_accessed_at", time.Now().Format(time.RFC3339))
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseInt(s string) int {
	var result int
	fmt.Sscanf(s, "%d", &result)
	return result
}
