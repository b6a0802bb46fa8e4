package store

import (
	"time"

	"github.com/Amirjjf/Chat-application-Distributed-System/internal/models"
	"gorm.io/gorm"
)

// Messages 封装文档存储里消息表的读写。
type Messages struct {
	db *gorm.DB
}

func NewMessages(db *gorm.DB) *Messages {
	return &Messages{db: db}
}

// MessageDTO 是对外输出的消息数据，字段名即线上协议。
type MessageDTO struct {
	ID            uint      `json:"id"`
	SenderID      string    `json:"senderIdentityId"`
	SenderLoginID string    `json:"senderLoginHandle"`
	SenderName    string    `json:"senderDisplayName"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
}

func toDTO(m models.Message) MessageDTO {
	return MessageDTO{
		ID:            m.ID,
		SenderID:      m.SenderID,
		SenderLoginID: m.SenderLoginID,
		SenderName:    m.SenderName,
		Text:          m.Text,
		Timestamp:     m.CreatedAt,
	}
}

// Append 持久化一条消息，id 与时间戳由存储在写入时分配。
func (s *Messages) Append(senderID, senderLoginID, senderName, text string) (*MessageDTO, error) {
	msg := models.Message{SenderID: senderID, SenderLoginID: senderLoginID, SenderName: senderName, Text: text}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	dto := toDTO(msg)
	return &dto, nil
}

// Recent 返回最近 limit 条消息，按 id 升序。
func (s *Messages) Recent(limit int, beforeID uint) ([]MessageDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := s.db.Model(&models.Message{})
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}

	var msgs []models.Message
	if err := q.Order("id desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// 反转为升序
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toDTO(m))
	}
	return out, nil
}
