package contract

import (
	"context"

	"marketing-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	CrudRepository[entity.ChatMessage]
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
}
