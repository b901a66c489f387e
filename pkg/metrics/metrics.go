// Package metrics 提供基于Prometheus的指标收集
//
// # 指标分组
//
// 1. HTTP请求：请求总数、耗时、正在处理的请求数
// 2. 查询缓存：命中/未命中/降级次数、回源计算耗时、失效次数
// 3. 熔断器：状态、请求结果
// 4. 消息队列：发布/消费次数
//
// # 命名规范
//
//   - Counter以`_total`结尾
//   - Histogram以单位结尾（`_seconds`）
//   - 标签只使用有限取值（keyspace、result、kind），不要把book_id放进标签
//
// # 使用示例
//
//	metrics.InitMetrics()
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	metrics.IncCounterVec(metrics.CacheLookupsTotal, map[string]string{
//	    "keyspace": "books",
//	    "result":   "hit",
//	})
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 缓存查询结果标签值
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultDegraded = "degraded" // 缓存后端故障，直接回源
	ResultShared   = "shared"   // single-flight合并的请求
)

var (
	// initOnce 防止重复注册（promauto重复注册会panic）
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/v1/books/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 查询缓存指标

	// CacheLookupsTotal 缓存查询次数
	// 标签：keyspace（books=列表、book=详情）、result（hit/miss/degraded/shared）
	CacheLookupsTotal *prometheus.CounterVec

	// CacheComputeDuration 缓存未命中时回源计算耗时
	CacheComputeDuration *prometheus.HistogramVec

	// CacheInvalidationsTotal 缓存失效次数
	// 标签：kind（created/updated/deleted/remote）、result（success/failure）
	CacheInvalidationsTotal *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数
	// 标签：name、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 可以被多次调用（测试中每个用例都会调用），只有第一次生效
func InitMetrics() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		CacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_cache_lookups_total",
				Help: "查询缓存访问次数",
			},
			[]string{"keyspace", "result"},
		)

		CacheComputeDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalog_cache_compute_duration_seconds",
				Help: "缓存未命中时回源查询耗时（秒）",
				// 聚合查询带子查询，比普通查询慢
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"keyspace"},
		)

		CacheInvalidationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_cache_invalidations_total",
				Help: "评论变更触发的缓存失效次数",
			},
			[]string{"kind", "result"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"exchange", "routing_key"},
		)

		MessagesConsumedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_consumed_total",
				Help: "消息消费总数",
			},
			[]string{"queue", "result"},
		)
	})
}

// 以下辅助函数在InitMetrics之前调用时不做任何事

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	if gauge == nil {
		return
	}
	gauge.Dec()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
