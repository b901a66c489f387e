package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheBackend 查询缓存的Redis后端
// 设计说明：
// 1. key统一加前缀（如 catalog:book:42），多个服务共用Redis时互不干扰
// 2. 过期由Redis负责（SET ... EX），过期的key不会被读到
// 3. redis.Nil表示未命中，不是错误
type CacheBackend struct {
	client *redis.Client
	prefix string
}

// NewCacheBackend 创建Redis缓存后端
func NewCacheBackend(client *redis.Client, prefix string) *CacheBackend {
	return &CacheBackend{client: client, prefix: prefix}
}

// Get 读取缓存
func (b *CacheBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set 写入缓存
func (b *CacheBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+key, value, ttl).Err()
}

// Delete 删除缓存
func (b *CacheBackend) Delete(ctx context.Context, key string) error {
	return b.client.Del(ctx, b.prefix+key).Err()
}
