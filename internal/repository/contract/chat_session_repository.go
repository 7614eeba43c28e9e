package contract

import "marketing-assistant-be/internal/entity"

type ChatSessionRepository interface {
	CrudRepository[entity.ChatSession]
}
