package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/storage"
)

var (
	// ErrInvalidCredentials 邮箱或口令错误。
	// 两种情况合并成一个错误，登录失败不暴露账户是否存在。
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail 邮箱格式非法
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidPassword 口令不满足最低要求
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
)

// Service 凭据网关：按邮箱存取用户并校验口令。
//
// 口令只保存 bcrypt 摘要；比较通过 bcrypt 的恒定时间实现完成。
type Service struct {
	users storage.UserRepository
}

// NewService 创建认证服务。
func NewService(users storage.UserRepository) *Service {
	return &Service{users: users}
}

// RegisterInput 定义注册输入。
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register 注册新用户。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < 8 {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验邮箱与口令，成功时返回用户。
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// validEmail 只做最基本的形状检查，完整校验交给上游客户端。
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
