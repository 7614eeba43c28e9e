package service

import (
	"context"
	"strings"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/events"
	"marketing-assistant-be/pkg/store"
)

// Processor answers one query given prior turns. Implemented by the orchestrator.
type Processor interface {
	Process(ctx context.Context, query string, priorTurns []store.Turn) store.Result
}

type IChatService interface {
	Chat(ctx context.Context, externalUserID string, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	conversation   IConversationService
	processor      Processor
	eventPublisher events.Publisher
	historyLimit   int
	logger         logger.ILogger
}

func NewChatService(
	conversation IConversationService,
	processor Processor,
	eventPublisher events.Publisher,
	historyLimit int,
	log logger.ILogger,
) IChatService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if log == nil {
		log = logger.Nop()
	}
	return &chatService{
		conversation:   conversation,
		processor:      processor,
		eventPublisher: eventPublisher,
		historyLimit:   historyLimit,
		logger:         log,
	}
}

// Chat runs one request/response turn. An unknown sessionId starts a new
// session; the assistant turn is persisted only when processing succeeded.
func (s *chatService) Chat(ctx context.Context, externalUserID string, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	query := strings.TrimSpace(request.Message)
	if query == "" {
		return nil, apperror.NewInputError("message", "is required")
	}

	sessionID, err := s.resolveSession(ctx, externalUserID, request.SessionId)
	if err != nil {
		return nil, err
	}

	history, err := s.conversation.History(ctx, sessionID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	if err := s.conversation.AppendTurn(ctx, store.Turn{
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	result := s.processor.Process(ctx, query, history)

	if !result.Failed() {
		if err := s.conversation.AppendTurn(ctx, store.Turn{
			SessionID: sessionID,
			Role:      store.RoleAssistant,
			Content:   result.Content,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	evt := events.NewChatTurnCompleted(sessionID, "", "http", result.Sources, result.Failed())
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("CHAT", "Failed to publish CHAT_TURN_COMPLETED event", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return &dto.ChatResponse{
		Content:   result.Content,
		Sources:   result.Sources,
		Error:     result.Error,
		SessionId: sessionID,
	}, nil
}

func (s *chatService) resolveSession(ctx context.Context, externalUserID, sessionID string) (string, error) {
	if sessionID != "" {
		if _, err := parseSessionID(sessionID); err != nil {
			return "", err
		}

		exists, err := s.conversation.SessionExists(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if exists {
			return sessionID, nil
		}
		s.logger.Info("CHAT", "Unknown session, starting a new one", map[string]interface{}{
			"session_id": sessionID,
		})
	}

	session, err := s.conversation.CreateSession(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}
