package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chatapp/backend/internal/monitoring"
)

// ProcessFunc 处理一条投递载荷
//
// 返回错误时消息不确认，由 broker 重投。至少一次投递意味着同一载荷
// 可能被重复处理，实现必须对重复投递保持幂等。
type ProcessFunc func(ctx context.Context, payload Payload, redelivered bool) error

// Consumer 投递队列的消费端
//
// 与发布端不同，消费者在进程生命周期内持有一条长连接，断开后按
// 指数退避重连。未确认时崩溃或断线的消息由 broker 重投给下一个
// 消费者实例。
type Consumer struct {
	url     string
	queue   string
	process ProcessFunc
	log     *zap.Logger
	metrics *monitoring.Metrics // 可为 nil（测试场景）
}

// NewConsumer 创建消费端。
func NewConsumer(url, queueName string, process ProcessFunc, log *zap.Logger, metrics *monitoring.Metrics) *Consumer {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Consumer{
		url:     url,
		queue:   queueName,
		process: process,
		log:     log,
		metrics: metrics,
	}
}

// Run 持续消费直到 ctx 取消
//
// 连接断开不是致命错误：记录后退避重连，退避上限 30 秒。
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.log.Warn("queue connection lost, reconnecting",
			zap.Error(err),
			zap.Duration("backoff", backoff),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// consume 建立一条连接并消费到出错或取消为止。
func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrQueueUnavailable, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: open channel: %v", ErrQueueUnavailable, err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, c.queue); err != nil {
		return fmt.Errorf("%w: declare queue: %v", ErrQueueUnavailable, err)
	}

	// 预取 1：处理完一条再接收下一条。牺牲吞吐换取简单性，
	// 并在突发流量下约束内存占用。
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("%w: set qos: %v", ErrQueueUnavailable, err)
	}

	deliveries, err := ch.Consume(
		c.queue,
		"",    // consumer tag（由 broker 生成）
		false, // autoAck：手动确认
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("%w: consume: %v", ErrQueueUnavailable, err)
	}

	c.log.Info("waiting for delivery payloads", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				// 投递通道关闭，返回让 Run 重连
				return ErrQueueUnavailable
			}
			c.handle(ctx, d)
		}
	}
}

// handle 处理单条投递并确认。
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var payload Payload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		// 解不开的载荷重投多少次都一样，确认后丢弃
		c.log.Error("dropping undecodable payload", zap.Error(err))
		_ = d.Ack(false)
		return
	}

	if c.metrics != nil {
		c.metrics.QueueConsumed.Inc()
		if d.Redelivered {
			c.metrics.QueueRedelivered.Inc()
		}
	}

	if err := c.process(ctx, payload, d.Redelivered); err != nil {
		c.log.Error("processing failed, requeueing payload",
			zap.Error(err),
			zap.String("receiver", payload.Receiver),
			zap.Bool("redelivered", d.Redelivered),
		)
		_ = d.Nack(false, true)
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Warn("ack failed, payload will be redelivered", zap.Error(err))
		return
	}
	if c.metrics != nil {
		c.metrics.QueueAcked.Inc()
	}
}
