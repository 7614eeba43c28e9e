package implementation

import (
	"context"

	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/mapper"
	"marketing-assistant-be/internal/model"
	"marketing-assistant-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessageRepositoryImpl stores conversation turns.
type ChatMessageRepositoryImpl struct {
	gormRepository[model.ChatMessage, entity.ChatMessage]
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	m := mapper.NewChatMapper()
	return &ChatMessageRepositoryImpl{
		gormRepository: newGormRepository(db, m.ChatMessageToModel, m.ChatMessageToEntity),
	}
}

func (r *ChatMessageRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chat_session_id = ?", sessionId).Delete(&model.ChatMessage{}).Error
}
