package sql

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/storage"
)

// CreateUser 保存新用户，邮箱冲突时返回 ErrEmailExists。
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	var count int64
	err := s.gormDB.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", user.Email).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if count > 0 {
		return storage.ErrEmailExists
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if err := s.gormDB.WithContext(ctx).Create(user).Error; err != nil {
		// 预检查不挡并发注册，唯一索引才是最终裁判
		if isDuplicateKey(err) {
			return storage.ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// isDuplicateKey 识别两种驱动的唯一约束冲突。
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return true
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

// GetUserByEmail 根据邮箱查询用户。
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.gormDB.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}
