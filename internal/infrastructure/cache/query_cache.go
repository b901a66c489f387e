// Package cache 读穿查询缓存
//
// QueryCache在任意Backend（Redis或进程内存）之上提供：
//   - 同一key并发未命中时只回源一次（singleflight）
//   - 同一key的写入和删除互斥；回源期间发生Forget时，回源结果返回给等待者但不写入
//   - 后端故障时降级为直接回源（熔断器保护，错误不返回给调用方）
//   - 删除不经过熔断器；删除失败的key被标记为待删除，删除成功前一律视为未命中
package cache

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/circuitbreaker"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// Backend 缓存存储后端
type Backend interface {
	// Get 读取未过期的值，不存在或已过期时found=false
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 写入值，ttl后过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除值（不存在不算错误）
	Delete(ctx context.Context, key string) error
}

const lockStripes = 64

// keyStripe 一组key共享的锁
//
// 三张表只保存仍有意义的key：
//   - generations：有回源进行中的key被Forget的次数，回源全部结束后清除
//   - flights：进行中的回源数
//   - pending：删除失败、尚未确认删除的key
type keyStripe struct {
	mu          sync.Mutex
	generations map[string]uint64
	flights     map[string]int
	pending     map[string]struct{}
}

// QueryCache 实现book.QueryCache
type QueryCache struct {
	backend Backend
	breaker *circuitbreaker.CircuitBreaker
	group   singleflight.Group
	stripes [lockStripes]keyStripe
	logger  *zap.Logger
}

var _ book.QueryCache = (*QueryCache)(nil)

// NewQueryCache 创建查询缓存
func NewQueryCache(backend Backend, breaker *circuitbreaker.CircuitBreaker, logger *zap.Logger) *QueryCache {
	c := &QueryCache{
		backend: backend,
		breaker: breaker,
		logger:  logger,
	}
	for i := range c.stripes {
		c.stripes[i].generations = make(map[string]uint64)
		c.stripes[i].flights = make(map[string]int)
		c.stripes[i].pending = make(map[string]struct{})
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": breaker.Name()}, float64(breaker.State()))
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("缓存熔断器状态变化",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})
	return c
}

// GetOrCompute 命中直接返回；未命中时回源一次并以ttl写入
//
// 调用方ctx取消时立即返回ctx.Err()，回源在后台继续并写入缓存
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute book.ComputeFunc) ([]byte, error) {
	keyspace := keyspaceOf(key)

	var (
		value   []byte
		found   bool
		healthy bool
	)
	// 待删除的key在后端可能仍是旧值，删除成功前不读取
	if c.settle(ctx, key) {
		value, found, healthy = c.lookup(ctx, key)
	}
	if found {
		c.count(keyspace, metrics.ResultHit)
		return value, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		generation := c.begin(key)
		defer c.end(key)

		// 排队期间其他flight可能已写入
		if healthy {
			if value, found, _ := c.lookup(flightCtx, key); found {
				return value, nil
			}
		}

		start := time.Now()
		data, err := compute(flightCtx)
		metrics.ObserveHistogramVec(metrics.CacheComputeDuration, map[string]string{"keyspace": keyspace}, time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}

		c.store(flightCtx, key, data, ttl, generation)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		switch {
		case !healthy:
			c.count(keyspace, metrics.ResultDegraded)
		case res.Shared:
			c.count(keyspace, metrics.ResultShared)
		default:
			c.count(keyspace, metrics.ResultMiss)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Forget 立即删除key，并让正在进行的回源结果不再写入
//
// 删除直接访问后端，不受熔断器状态影响；失败时key进入待删除状态，
// 之后的读取先重试删除，成功前不读取也不写入该key
func (c *QueryCache) Forget(ctx context.Context, key string) error {
	stripe := c.stripe(key)
	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	if stripe.flights[key] > 0 {
		stripe.generations[key]++
	}
	c.group.Forget(key)

	err := c.backend.Delete(ctx, key)
	c.observe(err)
	if err != nil {
		stripe.pending[key] = struct{}{}
		return err
	}
	delete(stripe.pending, key)
	return nil
}

// settle 重试待删除key的删除，返回false表示key仍待删除
func (c *QueryCache) settle(ctx context.Context, key string) bool {
	stripe := c.stripe(key)
	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	if _, ok := stripe.pending[key]; !ok {
		return true
	}

	err := c.backend.Delete(ctx, key)
	c.observe(err)
	if err != nil {
		c.logBackendError("重试删除缓存失败，直接回源", key, err)
		return false
	}
	delete(stripe.pending, key)
	c.logger.Info("待删除缓存已删除", zap.String("key", key))
	return true
}

// lookup 读取后端；healthy=false表示后端故障或熔断
func (c *QueryCache) lookup(ctx context.Context, key string) (value []byte, found bool, healthy bool) {
	err := c.guard(func() error {
		var err error
		value, found, err = c.backend.Get(ctx, key)
		return err
	})
	if err != nil {
		c.logBackendError("读取缓存失败，直接回源", key, err)
		return nil, false, false
	}
	return value, found, true
}

// store 写入缓存；回源开始后key被Forget过或仍待删除则放弃写入
func (c *QueryCache) store(ctx context.Context, key string, data []byte, ttl time.Duration, generation uint64) {
	stripe := c.stripe(key)
	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	if _, dirty := stripe.pending[key]; dirty || stripe.generations[key] != generation {
		c.logger.Debug("回源期间缓存已失效，放弃写入", zap.String("key", key))
		return
	}

	err := c.guard(func() error {
		return c.backend.Set(ctx, key, data, ttl)
	})
	if err != nil {
		c.logBackendError("写入缓存失败", key, err)
	}
}

// guard 通过熔断器访问后端
func (c *QueryCache) guard(fn func() error) error {
	err := c.breaker.Execute(fn)
	c.observe(err)
	return err
}

func (c *QueryCache) observe(err error) {
	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": c.breaker.Name(), "result": result})
}

// begin 登记一次回源，返回当前代数
func (c *QueryCache) begin(key string) uint64 {
	stripe := c.stripe(key)
	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	stripe.flights[key]++
	return stripe.generations[key]
}

// end 回源结束；最后一个回源结束时清除代数，没有回源就不需要比较代数
func (c *QueryCache) end(key string) {
	stripe := c.stripe(key)
	stripe.mu.Lock()
	defer stripe.mu.Unlock()

	if stripe.flights[key]--; stripe.flights[key] <= 0 {
		delete(stripe.flights, key)
		delete(stripe.generations, key)
	}
}

func (c *QueryCache) stripe(key string) *keyStripe {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.stripes[h.Sum32()%lockStripes]
}

func (c *QueryCache) logBackendError(msg, key string, err error) {
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		c.logger.Debug(msg, zap.String("key", key), zap.Error(err))
		return
	}
	c.logger.Warn(msg, zap.String("key", key), zap.Error(err))
}

func (c *QueryCache) count(keyspace, result string) {
	metrics.IncCounterVec(metrics.CacheLookupsTotal, map[string]string{"keyspace": keyspace, "result": result})
}

// keyspaceOf books:popular_last_month:go → books
func keyspaceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
