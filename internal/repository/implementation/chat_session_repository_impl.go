package implementation

import (
	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/mapper"
	"marketing-assistant-be/internal/model"
	"marketing-assistant-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ChatSessionRepositoryImpl struct {
	gormRepository[model.ChatSession, entity.ChatSession]
}

func NewChatSessionRepository(db *gorm.DB) contract.ChatSessionRepository {
	m := mapper.NewChatMapper()
	return &ChatSessionRepositoryImpl{
		gormRepository: newGormRepository(db, m.ChatSessionToModel, m.ChatSessionToEntity),
	}
}
