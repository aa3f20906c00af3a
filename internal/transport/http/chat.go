package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chatapp/backend/internal/middleware"
	"chatapp/backend/internal/service"
	"chatapp/backend/internal/storage"
)

// ChatHandler 聊天相关的 HTTP 处理器。
type ChatHandler struct {
	chat *service.ChatService
	log  *zap.Logger
}

// NewChatHandler 创建聊天处理器。
func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{chat: chat, log: log}
}

type sendRequest struct {
	Receiver string `json:"receiver" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

type markReadRequest struct {
	MessageID string `json:"message_id" binding:"required"`
}

// Send 发送消息
//
// 发送者取自令牌身份，不接受请求体里的发送者字段；入队失败
// 在服务层吞掉，这里看到的错误只来自持久化。
func (h *ChatHandler) Send(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, MsgAuthRequired)
		return
	}
	if identity.Email == "" {
		fail(c, http.StatusBadRequest, MsgEmailMissing)
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	if err := h.chat.Send(c.Request.Context(), identity.Email, req.Receiver, req.Message); err != nil {
		if errors.Is(err, storage.ErrEmptyBody) {
			fail(c, http.StatusBadRequest, MsgInvalidRequest)
			return
		}
		h.log.Error("send message failed", zap.Error(err), zap.String("sender", identity.Email))
		internalError(c, MsgSendFailed)
		return
	}

	okMessage(c, MsgSent)
}

// ListMessages 查询当前用户与对端之间的消息。
func (h *ChatHandler) ListMessages(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, MsgAuthRequired)
		return
	}
	if identity.Email == "" {
		fail(c, http.StatusBadRequest, MsgEmailMissing)
		return
	}

	peer := c.Query("other_user_email")

	views, err := h.chat.ListMessages(c.Request.Context(), identity.Email, peer)
	if err != nil {
		h.log.Error("list messages failed", zap.Error(err), zap.String("user", identity.Email))
		internalError(c, "Failed to fetch messages")
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": views})
}

// MarkRead 把指定消息标记为已读
//
// ID 格式非法返回 400；消息不存在与当前用户不是接收者
// 合并为同一个 404，不向非参与者泄露消息是否存在。
func (h *ChatHandler) MarkRead(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, MsgAuthRequired)
		return
	}
	if identity.Email == "" {
		fail(c, http.StatusBadRequest, MsgEmailMissing)
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgInvalidRequest)
		return
	}

	err := h.chat.MarkRead(c.Request.Context(), req.MessageID, identity.Email)
	switch {
	case errors.Is(err, storage.ErrInvalidMessageID):
		fail(c, http.StatusBadRequest, MsgInvalidMessageID)
	case errors.Is(err, storage.ErrMessageNotFound):
		fail(c, http.StatusNotFound, MsgMessageNotFound)
	case err != nil:
		h.log.Error("mark read failed", zap.Error(err), zap.String("message_id", req.MessageID))
		internalError(c, "Failed to mark message as read")
	default:
		okMessage(c, MsgMarkedRead)
	}
}
