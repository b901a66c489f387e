package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestInitMetrics 测试指标初始化（重复调用不能panic）
func TestInitMetrics(t *testing.T) {
	InitMetrics()
	InitMetrics()

	if HTTPRequestsTotal == nil || CacheLookupsTotal == nil || CacheInvalidationsTotal == nil {
		t.Fatal("指标未初始化")
	}
}

// TestCacheLookups 测试缓存命中计数
func TestCacheLookups(t *testing.T) {
	InitMetrics()

	hit := map[string]string{"keyspace": "books", "result": ResultHit}
	miss := map[string]string{"keyspace": "books", "result": ResultMiss}

	beforeHit := getCounterVecValue(t, CacheLookupsTotal, hit)
	beforeMiss := getCounterVecValue(t, CacheLookupsTotal, miss)

	IncCounterVec(CacheLookupsTotal, hit)
	IncCounterVec(CacheLookupsTotal, hit)
	IncCounterVec(CacheLookupsTotal, miss)

	if got := getCounterVecValue(t, CacheLookupsTotal, hit) - beforeHit; got != 2 {
		t.Errorf("命中计数错误: expected=2, got=%f", got)
	}
	if got := getCounterVecValue(t, CacheLookupsTotal, miss) - beforeMiss; got != 1 {
		t.Errorf("未命中计数错误: expected=1, got=%f", got)
	}
}

// TestGauge 测试正在处理请求数
func TestGauge(t *testing.T) {
	InitMetrics()

	before := getGaugeValue(t, HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	DecGauge(HTTPRequestsInProgress)

	if got := getGaugeValue(t, HTTPRequestsInProgress) - before; got != 1 {
		t.Errorf("Gauge值错误: expected=1, got=%f", got)
	}
}

// TestGaugeVec 测试熔断器状态
func TestGaugeVec(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "query-cache"}, 1)

	var m dto.Metric
	if err := CircuitBreakerState.With(map[string]string{"name": "query-cache"}).Write(&m); err != nil {
		t.Fatalf("读取GaugeVec失败: %v", err)
	}
	if m.Gauge.GetValue() != 1 {
		t.Errorf("GaugeVec值错误: expected=1, got=%f", m.Gauge.GetValue())
	}
}

// TestHistogramVec 测试回源耗时
func TestHistogramVec(t *testing.T) {
	InitMetrics()

	labels := map[string]string{"keyspace": "book"}
	before := getHistogramVecCount(t, CacheComputeDuration, labels)

	ObserveHistogramVec(CacheComputeDuration, labels, 0.02)
	ObserveHistogramVec(CacheComputeDuration, labels, 0.2)

	if got := getHistogramVecCount(t, CacheComputeDuration, labels) - before; got != 2 {
		t.Errorf("Histogram观测次数错误: expected=2, got=%d", got)
	}
}

func getCounterVecValue(t *testing.T, counterVec *prometheus.CounterVec, labels map[string]string) float64 {
	t.Helper()
	var metric dto.Metric
	if err := counterVec.With(labels).Write(&metric); err != nil {
		t.Fatalf("读取CounterVec值失败: %v", err)
	}
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("读取Gauge值失败: %v", err)
	}
	return metric.Gauge.GetValue()
}

func getHistogramVecCount(t *testing.T, histogramVec *prometheus.HistogramVec, labels map[string]string) uint64 {
	t.Helper()
	var metric dto.Metric
	observer := histogramVec.With(labels)
	if err := observer.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("读取HistogramVec值失败: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}
