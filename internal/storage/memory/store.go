package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/storage"
)

// Store 使用内存保存消息与用户数据，主要用于开发验证和测试。
type Store struct {
	mu       sync.RWMutex
	messages map[string]*domain.Message
	order    []string // 插入顺序，时间戳相同时保证列表稳定
	users    map[string]*domain.User
	byEmail  map[string]string // email -> userID
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		messages: make(map[string]*domain.Message),
		order:    make([]string, 0),
		users:    make(map[string]*domain.User),
		byEmail:  make(map[string]string),
	}
}

// SaveMessage 保存消息并分配 ID 与创建时间。
func (s *Store) SaveMessage(_ context.Context, message *domain.Message) error {
	if strings.TrimSpace(message.Body) == "" {
		return storage.ErrEmptyBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	stored := *message
	s.messages[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return nil
}

// ListBetween 按 created_at 升序返回消息快照。
func (s *Store) ListBetween(_ context.Context, userA, userB string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Message, 0)
	for _, id := range s.order {
		m := s.messages[id]
		if matchesPair(m, userA, userB) {
			result = append(result, *m)
		}
	}

	// order 本身是插入序，这里只按时间排序；相同时间戳保持插入序
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// MarkMessageRead 把接收者名下的消息置为已读，可重复调用。
func (s *Store) MarkMessageRead(_ context.Context, messageID, receiver string) error {
	if _, err := uuid.Parse(messageID); err != nil {
		return storage.ErrInvalidMessageID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[messageID]
	if !ok || m.Receiver != receiver {
		return storage.ErrMessageNotFound
	}
	m.Read = true
	return nil
}

// CreateUser 保存新用户，邮箱冲突时返回 ErrEmailExists。
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return storage.ErrEmailExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	stored := *user
	s.users[stored.ID] = &stored
	s.byEmail[stored.Email] = stored.ID
	return nil
}

// GetUserByEmail 根据邮箱查询用户。
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	user := *s.users[id]
	return &user, nil
}

// Health 内存存储总是健康的。
func (s *Store) Health() error {
	return nil
}

// matchesPair 判断消息是否属于请求的会话范围。
func matchesPair(m *domain.Message, userA, userB string) bool {
	if userB == "" {
		return m.Sender == userA || m.Receiver == userA
	}
	return (m.Sender == userA && m.Receiver == userB) ||
		(m.Sender == userB && m.Receiver == userA)
}
