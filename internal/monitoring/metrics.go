package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 聊天业务指标
	MessagesSent prometheus.Counter
	MessagesRead prometheus.Counter

	// 投递队列指标
	QueuePublished       prometheus.Counter
	QueuePublishFailures prometheus.Counter
	QueueConsumed        prometheus.Counter
	QueueRedelivered     prometheus.Counter
	QueueAcked           prometheus.Counter

	// 错误指标
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
//
// 使用独立的 Registry，避免多实例（例如测试）重复注册冲突。
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatapp_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatapp_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		MessagesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_messages_sent_total",
				Help: "Total number of messages persisted",
			},
		),
		MessagesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_messages_read_total",
				Help: "Total number of messages marked as read",
			},
		),

		QueuePublished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_queue_published_total",
				Help: "Total number of delivery payloads published to the queue",
			},
		),
		QueuePublishFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_queue_publish_failures_total",
				Help: "Total number of failed queue publishes (non-fatal to send)",
			},
		),
		QueueConsumed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_queue_consumed_total",
				Help: "Total number of delivery payloads received by the worker",
			},
		),
		QueueRedelivered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_queue_redelivered_total",
				Help: "Total number of redelivered payloads (at-least-once duplicates)",
			},
		),
		QueueAcked: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_queue_acked_total",
				Help: "Total number of acknowledged deliveries",
			},
		),

		PanicsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatapp_panics_total",
				Help: "Total number of recovered panics",
			},
		),
	}
}

// Handler 返回 /metrics 的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
