package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/storage"
)

// SaveMessage 持久化消息，ID 与创建时间由存储层分配。
func (s *Store) SaveMessage(ctx context.Context, message *domain.Message) error {
	if strings.TrimSpace(message.Body) == "" {
		return storage.ErrEmptyBody
	}

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	if err := s.gormDB.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// ListBetween 按 created_at 升序返回消息。
func (s *Store) ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	query := s.gormDB.WithContext(ctx).Model(&domain.Message{})
	if userB == "" {
		query = query.Where("sender = ? OR receiver = ?", userA, userA)
	} else {
		query = query.Where(
			"(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
			userA, userB, userB, userA,
		)
	}

	var messages []domain.Message
	if err := query.Order("created_at ASC").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// MarkMessageRead 以单条条件更新把消息置为已读。
//
// 谓词 {id, receiver} 使更新天然原子：要么命中并置位，要么什么都不做。
func (s *Store) MarkMessageRead(ctx context.Context, messageID, receiver string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return storage.ErrInvalidMessageID
	}

	result := s.gormDB.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND receiver = ?", messageID, receiver).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("mark message read: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// MySQL 对无变化的 UPDATE 报告 0 行；二次确认存在性以保持重复调用幂等
		var count int64
		err := s.gormDB.WithContext(ctx).
			Model(&domain.Message{}).
			Where("id = ? AND receiver = ?", messageID, receiver).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("mark message read: %w", err)
		}
		if count == 0 {
			return storage.ErrMessageNotFound
		}
	}
	return nil
}
