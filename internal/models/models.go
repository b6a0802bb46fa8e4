package models

import "time"

// Message 是聊天消息的持久化形态，id 与时间戳由文档存储在写入时分配。
type Message struct {
	ID            uint      `gorm:"primaryKey"`
	SenderID      string    `gorm:"index;size:64;not null"`
	SenderLoginID string    `gorm:"size:64;not null"`
	SenderName    string    `gorm:"size:64;not null"`
	Text          string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"index:idx_msg_created_at"`
}
