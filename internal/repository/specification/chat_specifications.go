package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type ByExternalUserID struct {
	ExternalUserID string
}

func (s ByExternalUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_user_id = ?", s.ExternalUserID)
}
