package domain

import "time"

// Message 表示一条用户间的持久化聊天消息。
//
// ID 由存储层在保存时分配，创建后保持稳定；Read 只允许从 false 变为 true，
// 且仅能由 Receiver 本人触发。发送者与接收者允许相同（自己给自己发消息）。
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Sender    string    `json:"sender" gorm:"size:255;index:idx_messages_sender"`
	Receiver  string    `json:"receiver" gorm:"size:255;index:idx_messages_receiver"`
	Body      string    `json:"message" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_messages_created_at"`
	Read      bool      `json:"read" gorm:"column:read;default:false"`
}

// TableName 指定消息表名。
func (Message) TableName() string {
	return "messages"
}
