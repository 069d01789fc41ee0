package dbmysql

import (
	"time"

	"gochat/internal/common"
)

type Message struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	ChatID    string    `gorm:"column:chat_id;size:191;not null;index:idx_messages_chat_created,priority:1"`
	SenderID  string    `gorm:"column:sender_id;size:36;not null;index"`
	Content   string    `gorm:"column:content;type:text;not null"`
	Read      bool      `gorm:"column:read;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_messages_chat_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) ToDomain() *common.Message {
	return &common.Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func MessageFromDomain(msg *common.Message) *Message {
	return &Message{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Read:      msg.Read,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
	}
}
