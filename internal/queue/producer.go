package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher 投递队列的发布端
//
// 每次发布独立建立并释放连接（即取即用），不长期占用 broker 资源，
// broker 重启后下一次发布自动恢复。
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger
}

// NewPublisher 创建发布端。
func NewPublisher(url, queueName string, log *zap.Logger) *Publisher {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Publisher{
		url:   url,
		queue: queueName,
		log:   log,
	}
}

// Publish 同步发布一条持久化消息
//
// 调用阻塞到 broker 接受为止；broker 不可达时返回 ErrQueueUnavailable，
// 由调用方决定是否忽略。
func (p *Publisher) Publish(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrQueueUnavailable, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: open channel: %v", ErrQueueUnavailable, err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, p.queue); err != nil {
		return fmt.Errorf("%w: declare queue: %v", ErrQueueUnavailable, err)
	}

	err = ch.PublishWithContext(ctx,
		"",      // exchange（默认交换机按队列名路由）
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // 消息落盘，broker 重启不丢
			Timestamp:    payload.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: publish: %v", ErrQueueUnavailable, err)
	}

	p.log.Debug("delivery payload published",
		zap.String("queue", p.queue),
		zap.String("receiver", payload.Receiver),
	)
	return nil
}
