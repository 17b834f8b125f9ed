// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	import "github.com/yeisme/objectvault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("GET", "/api/v1/buckets").Inc()
//	metrics.RequestDuration.WithLabelValues("GET", "/api/v1/buckets").Observe(0.1)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/objectvault/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// ObjectUploads 对象上传计数，按后端与桶区分.
	ObjectUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectvault_object_uploads_total",
			Help: "Total number of objects uploaded",
		},
		[]string{"backend", "bucket"},
	)

	// DocumentsIndexed 文档索引计数，按目标索引与结果区分.
	DocumentsIndexed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectvault_documents_indexed_total",
			Help: "Total number of documents indexed into Elasticsearch",
		},
		[]string{"index", "result"},
	)

	// SearchQueries 搜索请求计数，按搜索种类区分.
	SearchQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectvault_search_queries_total",
			Help: "Total number of search queries executed",
		},
		[]string{"kind"},
	)

	// LikeToggles 点赞切换计数，按目标类型与方向区分.
	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectvault_like_toggles_total",
			Help: "Total number of like toggles",
		},
		[]string{"target_type", "direction"},
	)

	// BehaviorRecords 用户行为记录计数，按行为类型区分.
	BehaviorRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objectvault_behavior_records_total",
			Help: "Total number of user behavior records",
		},
		[]string{"behavior_type"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration, ActiveConnections,
		ObjectUploads, DocumentsIndexed, SearchQueries, LikeToggles, BehaviorRecords,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// NewCounter 创建新的计数器指标.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(counter)

	return counter
}

// NewGauge 创建新的仪表盘指标.
func NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(gauge)

	return gauge
}

// NewHistogram 创建新的直方图指标.
func NewHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(histogram)

	return histogram
}
