package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campus_life"

// Metrics 应用指标集合
// 所有记录方法对 nil 接收者安全，单元测试可直接传 nil
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	conflictChecks    *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	refreshRuns       *prometheus.CounterVec
	refreshDuration   prometheus.Histogram
}

// New 创建独立 Registry 并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		conflictChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "conflict_checks_total",
			Help:      "课表冲突检测次数",
		}, []string{"result"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workitem",
			Name:      "status_transitions_total",
			Help:      "事项状态自动流转次数",
		}, []string{"kind", "status"}),
		refreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresher",
			Name:      "runs_total",
			Help:      "状态刷新任务执行次数",
		}, []string{"result"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresher",
			Name:      "run_duration_seconds",
			Help:      "状态刷新任务耗时",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.conflictChecks,
		m.statusTransitions,
		m.refreshRuns,
		m.refreshDuration,
	)
	return m
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry 返回底层 Registry，测试中用于读取指标
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveConflictCheck 记录一次冲突检测结果
func (m *Metrics) ObserveConflictCheck(conflicts int) {
	if m == nil {
		return
	}
	result := "clear"
	if conflicts > 0 {
		result = "conflict"
	}
	m.conflictChecks.WithLabelValues(result).Inc()
}

// ObserveTransition 记录一次状态自动流转
func (m *Metrics) ObserveTransition(kind, status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(kind, status).Inc()
}

// ObserveRefresh 记录一次刷新任务
// result: ok | error | skipped
func (m *Metrics) ObserveRefresh(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refreshRuns.WithLabelValues(result).Inc()
	if result != "skipped" {
		m.refreshDuration.Observe(elapsed.Seconds())
	}
}
