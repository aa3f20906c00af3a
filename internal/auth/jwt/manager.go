package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken 令牌无法解析或结构非法
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpiredToken 令牌已过期
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken 签名或算法不匹配等其他验证失败
	ErrInvalidToken = errors.New("invalid token")
)

// DefaultTTL 令牌默认有效期
const DefaultTTL = 24 * time.Hour

// Claims 聊天令牌的自定义声明
//
// 用户 ID 放在标准的 sub 声明里；email 和 username 为扩展声明，
// username 可缺省。
type Claims struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Manager JWT 管理器
//
// 纯计算、无状态：签发与验证只依赖密钥和当前时间，不访问数据库，
// 任何服务实例都能独立完成认证。
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager 创建 JWT 管理器，ttl 不大于零时使用 DefaultTTL。
func NewManager(secret, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue 为指定用户签发访问令牌
//
// userID 写入 sub 声明，不允许为空；过期时间为当前时间加 TTL。
func (m *Manager) Issue(userID, email, username string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: subject must not be empty")
	}

	now := time.Now()
	claims := Claims{
		Email:    email,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify 验证令牌并返回声明
//
// 失败分三类：ErrMalformedToken（结构非法）、ErrExpiredToken（已过期）、
// ErrInvalidToken（签名或算法不匹配等）。声称其他签名算法的令牌一律
// 拒绝，防止算法混淆攻击。
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// sub 缺失的声明集不被接受
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
