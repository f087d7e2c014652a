package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active HTTP requests",
		},
		[]string{"method", "route"},
	)

	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Total number of AI chat completion calls by mode and status",
		},
		[]string{"mode", "status"},
	)

	aiCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_call_duration_seconds",
			Help:    "Duration of AI chat completion calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		},
		[]string{"mode"},
	)

	infraHealthStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infrastructure_health_status",
			Help: "Health status of infrastructure components (1=healthy, 0=unhealthy)",
		},
		[]string{"service", "component"},
	)

	infraConnectionLatency = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "infrastructure_connection_latency_ms",
			Help: "Connection latency to infrastructure components in milliseconds",
		},
		[]string{"service", "component"},
	)

	promRegistry *prometheus.Registry
)

// InitPrometheusMetrics 建立自定义 registry 并注册全部业务指标与 Go 运行时指标
func InitPrometheusMetrics(logger zerolog.Logger) error {
	promRegistry = prometheus.NewRegistry()

	collectors := []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		httpRequestsActive,
		aiCallsTotal,
		aiCallDurationSeconds,
		infraHealthStatus,
		infraConnectionLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	}
	for _, c := range collectors {
		if err := promRegistry.Register(c); err != nil {
			return err
		}
	}

	logger.Info().Int("collectors", len(collectors)).Msg("Prometheus metrics 初始化成功")
	return nil
}

// GetStandardPrometheusHandler 暴露 /metrics 端点的 handler
func GetStandardPrometheusHandler() http.Handler {
	if promRegistry == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Prometheus registry not initialized", http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry 供其他包向同一 registry 注册指标
func GetPrometheusRegistry() *prometheus.Registry {
	return promRegistry
}

// PrometheusMiddleware 统计每个请求的次数、耗时与并发数
func PrometheusMiddleware(logger zerolog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if promRegistry == nil {
			next(ctx)
			return
		}

		method := ctx.Method()
		route := ctx.URL().Path
		httpRequestsActive.WithLabelValues(method, route).Inc()
		start := time.Now()

		next(ctx)

		elapsed := time.Since(start)
		httpRequestsActive.WithLabelValues(method, route).Dec()
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Status())).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

// RecordAICall 记录一次 AI 调用的结果与耗时
func RecordAICall(mode, status string, duration time.Duration) {
	if promRegistry == nil {
		return
	}
	aiCallsTotal.WithLabelValues(mode, status).Inc()
	aiCallDurationSeconds.WithLabelValues(mode).Observe(duration.Seconds())
}

// UpdateInfrastructureHealth 更新基础设施健康状态与连接延迟
func UpdateInfrastructureHealth(service, component string, isHealthy bool, latencyMs float64) {
	if promRegistry == nil {
		return
	}
	value := 0.0
	if isHealthy {
		value = 1.0
	}
	infraHealthStatus.WithLabelValues(service, component).Set(value)
	if latencyMs >= 0 {
		infraConnectionLatency.WithLabelValues(service, component).Set(latencyMs)
	}
}
