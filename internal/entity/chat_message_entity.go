package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one persisted conversation turn.
type ChatMessage struct {
	Id            uuid.UUID
	Content       string
	Role          string
	ChatSessionId uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
