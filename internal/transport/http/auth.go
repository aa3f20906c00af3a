package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatapp/backend/internal/auth"
	jwtpkg "chatapp/backend/internal/auth/jwt"
	"chatapp/backend/internal/middleware"
	"chatapp/backend/internal/storage"
)

// AuthHandler 注册、登录与用户信息的 HTTP 处理器。
type AuthHandler struct {
	auth   *auth.Service
	tokens *jwtpkg.Manager
	log    *zap.Logger
}

// NewAuthHandler 创建认证处理器。
func NewAuthHandler(authService *auth.Service, tokens *jwtpkg.Manager, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: authService, tokens: tokens, log: log}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册新用户。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	_, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrInvalidPassword):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrEmailExists):
		fail(c, http.StatusConflict, MsgEmailExists)
	case err != nil:
		h.log.Error("register failed", zap.Error(err))
		internalError(c, "Failed to register user")
	default:
		c.JSON(http.StatusCreated, gin.H{"message": MsgRegistered})
	}
}

// Login 校验凭据并签发访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, MsgLoginFailed)
			return
		}
		h.log.Error("login failed", zap.Error(err))
		internalError(c, "Failed to log in")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.Username)
	if err != nil {
		h.log.Error("issue token failed", zap.Error(err))
		internalError(c, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Profile 返回当前令牌对应的身份信息。
func (h *AuthHandler) Profile(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, MsgAuthRequired)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  identity.UserID,
		"email":    identity.Email,
		"username": identity.Username,
	})
}
