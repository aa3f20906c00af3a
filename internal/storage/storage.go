package storage

import (
	"context"
	"errors"

	"chatapp/backend/internal/domain"
)

var (
	// ErrEmptyBody 消息正文为空
	ErrEmptyBody = errors.New("message body must not be empty")
	// ErrInvalidMessageID 消息 ID 不是合法的标识符格式。
	// 输入格式错误与查询未命中是两类错误，前者返回 400 而不是 404。
	ErrInvalidMessageID = errors.New("invalid message id format")
	// ErrMessageNotFound 消息不存在或当前用户不是接收者。
	// 故意合并两种情况，避免向非参与者泄露消息是否存在。
	ErrMessageNotFound = errors.New("message not found or unauthorized")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists 邮箱已被注册
	ErrEmailExists = errors.New("email already registered")
)

// MessageRepository 定义消息数据存取操作。
type MessageRepository interface {
	// SaveMessage 持久化一条消息；ID 与 CreatedAt 由存储层分配。
	// 正文为空时返回 ErrEmptyBody。
	SaveMessage(ctx context.Context, message *domain.Message) error

	// ListBetween 按 created_at 升序返回消息。
	// userB 非空时返回两人之间双向的消息；为空时返回 userA
	// 作为发送者或接收者的全部消息。
	ListBetween(ctx context.Context, userA, userB string) ([]domain.Message, error)

	// MarkMessageRead 把 receiver 名下的指定消息置为已读。
	// 单次条件更新，天然原子且幂等；ID 格式非法返回
	// ErrInvalidMessageID，未命中返回 ErrMessageNotFound。
	MarkMessageRead(ctx context.Context, messageID, receiver string) error
}

// UserRepository 定义用户数据存取操作（凭据网关）。
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
