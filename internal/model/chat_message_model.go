package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessage struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content       string         `gorm:"type:text;not null"`
	Role          string         `gorm:"type:varchar(20);not null"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index:idx_chat_messages_session_created,priority:1"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index:idx_chat_messages_session_created,priority:2"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
