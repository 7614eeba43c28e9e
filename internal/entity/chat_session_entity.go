package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id             uuid.UUID
	ExternalUserId string
	Source         string // "http", "discord", "ws", "nats"
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
