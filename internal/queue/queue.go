package queue

import (
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueueName 默认的聊天投递队列名
const DefaultQueueName = "chat_queue"

// ErrQueueUnavailable broker 不可达或连接中断。
// 对 send 调用方是非致命错误：消息已经持久化，入队失败只记录。
var ErrQueueUnavailable = errors.New("delivery queue unavailable")

// Payload 入队的消息快照
//
// 自包含的副本，不持有对存储记录的引用；入队之后两份数据不再同步。
type Payload struct {
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Body      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// declareQueue 幂等声明持久队列。
// 生产者与消费者使用同一份声明，队列与积压消息都能在 broker 重启后幸存。
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}
