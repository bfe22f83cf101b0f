// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集HTTP请求、文件操作与一致性巡检指标.
//
// Example:
//
//	import "github.com/yeisme/filecdn/pkg/metrics"
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RecordFileOp("create", "ok", len(data))
package metrics

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filecdn/pkg/configs"
)

const namespace = "filecdn"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 正在处理的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// FileOperations 文件服务操作计数，result 取 ok/invalid_input/not_found/storage_failure.
	FileOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_operations_total",
			Help:      "File service operations by outcome",
		},
		[]string{"op", "result"},
	)

	// FileBytes 读写的文件内容大小.
	FileBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_content_bytes",
			Help:      "Size of file content read or written",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"op"},
	)

	// OrphanedRecords 最近一次巡检发现的孤立元数据数量.
	OrphanedRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphaned_records",
			Help:      "Metadata records without content found by the last reconciliation",
		},
	)

	// ReconcileRuns 巡检执行次数.
	ReconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation runs by outcome",
		},
		[]string{"result"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	// withDefault 是否同时暴露默认注册表（Go 运行时收集器以及 gorm 插件等第三方注册的指标）.
	withDefault atomic.Bool
)

func init() {
	registry.MustRegister(
		RequestCounter,
		RequestDuration,
		ActiveConnections,
		FileOperations,
		FileBytes,
		OrphanedRecords,
		ReconcileRuns,
	)
}

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	withDefault.Store(config.RuntimeMetrics || config.DBMetrics)

	return nil
}

// Handler 返回暴露指标的 HTTP 处理器.
func Handler() gin.HandlerFunc {
	opts := promhttp.HandlerOpts{Registry: registry, EnableOpenMetrics: true}
	own := promhttp.HandlerFor(registry, opts)
	merged := promhttp.HandlerFor(prometheus.Gatherers{registry, prometheus.DefaultGatherer}, opts)

	return func(c *gin.Context) {
		if withDefault.Load() {
			merged.ServeHTTP(c.Writer, c.Request)
			return
		}

		own.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordFileOp 记录一次文件操作，size < 0 时不记录内容大小.
func RecordFileOp(op, result string, size int) {
	FileOperations.WithLabelValues(op, result).Inc()

	if size >= 0 && result == "ok" {
		FileBytes.WithLabelValues(op).Observe(float64(size))
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
