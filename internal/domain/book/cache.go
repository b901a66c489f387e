package book

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CacheTTL 所有缓存条目的固定过期时间
const CacheTTL = 3600 * time.Second

// ComputeFunc 缓存未命中时的回源函数
type ComputeFunc func(ctx context.Context) ([]byte, error)

// QueryCache 读穿缓存(由基础设施层实现)
//
// GetOrCompute命中且未过期时直接返回，不调用compute；
// 未命中或已过期时调用一次compute，以 now+ttl 为过期时间保存并返回。
// Forget立即删除条目，无论是否过期。
type QueryCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error)
	Forget(ctx context.Context, key string) error
}

// ListKey 列表缓存key：books:<filter>:<title>
//
// filter使用请求中的原始token；书名为空和未传书名得到同一个key
func ListKey(filter, title string) string {
	return "books:" + filter + ":" + title
}

// DetailKey 详情缓存key：book:<id>
func DetailKey(id uint) string {
	return fmt.Sprintf("book:%d", id)
}

// Remember 以JSON缓存compute的结果
//
// 命中和未命中都从缓存字节解码，同一key在TTL内返回的值完全一致
func Remember[T any](ctx context.Context, cache QueryCache, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	var out T

	data, err := cache.GetOrCompute(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("解码缓存值失败(key=%s): %w", key, err)
	}
	return out, nil
}
