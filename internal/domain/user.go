package domain

import "time"

// User 表示注册用户账户。
//
// PasswordHash 只保存 bcrypt 摘要，明文口令不落库也不出现在日志里。
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255"`
	Username     string    `json:"username" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"size:100"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定用户表名。
func (User) TableName() string {
	return "users"
}
