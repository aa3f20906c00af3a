package health

import (
	"fmt"
	"net"
	"time"

	"github.com/heptiolabs/healthcheck"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Pinger 可探活的依赖（存储实现均满足）。
type Pinger interface {
	Health() error
}

// NewHandler 组装存活与就绪探针
//
// 存活只看进程自身；就绪额外检查存储与 broker 的可达性，
// 任一依赖不可达时就绪探针失败，实例从负载均衡摘除。
func NewHandler(store Pinger, queueURL string) healthcheck.Handler {
	handler := healthcheck.NewHandler()

	handler.AddLivenessCheck("goroutine-count", healthcheck.GoroutineCountCheck(1000))

	if store != nil {
		handler.AddReadinessCheck("storage", func() error {
			return store.Health()
		})
	}

	if queueURL != "" {
		if addr, err := brokerAddr(queueURL); err == nil {
			handler.AddReadinessCheck("queue-broker", healthcheck.TCPDialCheck(addr, 2*time.Second))
		}
	}

	return handler
}

// brokerAddr 从 AMQP URL 解析出 host:port 用于 TCP 探测。
func brokerAddr(url string) (string, error) {
	uri, err := amqp.ParseURI(url)
	if err != nil {
		return "", fmt.Errorf("parse queue url: %w", err)
	}
	return net.JoinHostPort(uri.Host, fmt.Sprintf("%d", uri.Port)), nil
}
