package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// revizly 指标
var (
	// HTTPRequestsTotal HTTP 请求计数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revizly",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "revizly",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// MessagesCreatedTotal 已持久化的消息数
	MessagesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revizly",
			Name:      "messages_created_total",
			Help:      "Total messages persisted, by sender",
		},
		[]string{"sender"},
	)

	// InferenceRequestsTotal 推理请求计数
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revizly",
			Name:      "inference_requests_total",
			Help:      "Total inference requests, by outcome",
		},
		[]string{"status"},
	)
)

// RecordRequest 记录一次 HTTP 请求
func RecordRequest(method, path, status string, durationSec float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSec)
}

// RecordMessage 记录一条持久化消息
func RecordMessage(sender string) {
	MessagesCreatedTotal.WithLabelValues(sender).Inc()
}

// RecordInference 记录一次推理调用（success / error / rejected）
func RecordInference(status string) {
	InferenceRequestsTotal.WithLabelValues(status).Inc()
}

// Handler /metrics 处理器
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
