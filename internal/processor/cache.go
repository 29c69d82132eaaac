package processor

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache 翻译结果缓存，失败时静默当作未命中
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// RedisCache 使用 Redis 保存翻译结果，避免每轮重复请求同一标题
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("translate cache get: %v", err)
		}
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		log.Printf("translate cache set: %v", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func cacheKey(target, text string) string {
	h := sha1.New()
	h.Write([]byte(target))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return "translate:" + target + ":" + hex.EncodeToString(h.Sum(nil))
}
