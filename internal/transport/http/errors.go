package http

// 对外响应文本。这些字符串是接口契约的一部分，客户端按原文匹配，
// 不要轻易改动。
const (
	MsgInvalidRequest   = "invalid request body"
	MsgAuthRequired     = "authentication required"
	MsgEmailMissing     = "Email not found in token"
	MsgSent             = "Message sent successfully"
	MsgSendFailed       = "Failed to send message"
	MsgMarkedRead       = "Message marked as read"
	MsgInvalidMessageID = "Invalid message ID format"
	MsgMessageNotFound  = "Message not found or unauthorized"
	MsgEmailExists      = "Email already registered"
	MsgRegistered       = "User registered successfully"
	MsgLoginFailed      = "Invalid email or password"
)
