package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/monitoring"
	"chatapp/backend/internal/queue"
	"chatapp/backend/internal/storage"
)

// Publisher 投递队列的发布端接口。
type Publisher interface {
	Publish(ctx context.Context, payload queue.Payload) error
}

// ChatService 聊天业务服务
//
// 持久化存储是消息的权威副本，队列投递只是尽力而为的加速通道：
// 入队失败不影响 send 的成败，接收者始终能从存储里读到消息。
type ChatService struct {
	repo      storage.MessageRepository
	publisher Publisher
	log       *zap.Logger
	metrics   *monitoring.Metrics
}

// NewChatService 创建聊天服务。
func NewChatService(repo storage.MessageRepository, publisher Publisher, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// SetMetrics 注入监控指标（可选）。
func (s *ChatService) SetMetrics(metrics *monitoring.Metrics) {
	s.metrics = metrics
}

// MessageView 消息的对外表示。
type MessageView struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Body      string `json:"message"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// Send 发送一条消息
//
// 先落库再入队：落库失败即失败；入队失败只记日志和指标，
// 对调用方仍然是成功。
func (s *ChatService) Send(ctx context.Context, sender, receiver, body string) error {
	msg := &domain.Message{
		Sender:   sender,
		Receiver: receiver,
		Body:     body,
	}
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}

	// 入队的是落库后的快照，携带存储层分配的时间戳
	payload := queue.Payload{
		Sender:    msg.Sender,
		Receiver:  msg.Receiver,
		Body:      msg.Body,
		Timestamp: msg.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Warn("enqueue failed, message persisted without queue delivery",
			zap.Error(err),
			zap.String("message_id", msg.ID),
		)
		if s.metrics != nil {
			s.metrics.QueuePublishFailures.Inc()
		}
		return nil
	}
	if s.metrics != nil {
		s.metrics.QueuePublished.Inc()
	}
	return nil
}

// ListMessages 返回 user 与 peer 之间的消息，按时间升序
//
// peer 为空时返回 user 参与的全部消息。
func (s *ChatService) ListMessages(ctx context.Context, user, peer string) ([]MessageView, error) {
	messages, err := s.repo.ListBetween(ctx, user, peer)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			ID:        m.ID,
			From:      m.Sender,
			To:        m.Receiver,
			Body:      m.Body,
			Timestamp: formatTimestamp(m.CreatedAt),
			Read:      m.Read,
		})
	}
	return views, nil
}

// MarkRead 把 receiver 名下的消息置为已读，重复调用幂等。
func (s *ChatService) MarkRead(ctx context.Context, messageID, receiver string) error {
	if err := s.repo.MarkMessageRead(ctx, messageID, receiver); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.MessagesRead.Inc()
	}
	return nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
