package service

import (
	"context"
	"strings"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/entity"
	"marketing-assistant-be/internal/mapper"
	"marketing-assistant-be/internal/repository/specification"
	"marketing-assistant-be/internal/repository/unitofwork"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/store"

	"github.com/google/uuid"
)

const defaultSessionSource = "http"

// IConversationService is the session store: sessions and their turns.
type IConversationService interface {
	CreateSession(ctx context.Context, externalUserID string) (*store.Session, error)
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	LatestSession(ctx context.Context, externalUserID string) (*store.Session, error)
	History(ctx context.Context, sessionID string, limit int) ([]store.Turn, error)
	AppendTurn(ctx context.Context, turn store.Turn) error
	GetTurns(ctx context.Context, sessionID uuid.UUID, limit int) (*dto.SessionTurnsResponse, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ChatMapper
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		mapper:     mapper.NewChatMapper(),
	}
}

// CreateSession stores a new session. The source is the namespace of the
// external user id ("discord:123" -> "discord").
func (c *conversationService) CreateSession(ctx context.Context, externalUserID string) (*store.Session, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	session := entity.ChatSession{
		Id:             uuid.New(),
		ExternalUserId: externalUserID,
		Source:         sessionSource(externalUserID),
		CreatedAt:      time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return c.mapper.ChatSessionToStore(&session), nil
}

func (c *conversationService) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return false, nil
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.ChatSessionRepository().Count(ctx, specification.ByID{ID: id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestSession returns the newest session of externalUserID, or nil when
// the user has none.
func (c *conversationService) LatestSession(ctx context.Context, externalUserID string) (*store.Session, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByExternalUserID{ExternalUserID: externalUserID},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	return c.mapper.ChatSessionToStore(session), nil
}

// History returns the most recent limit turns, oldest first.
func (c *conversationService) History(ctx context.Context, sessionID string, limit int) ([]store.Turn, error) {
	id, err := parseSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := c.recentMessages(ctx, id, limit)
	if err != nil {
		return nil, err
	}

	turns := make([]store.Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, c.mapper.ChatMessageToTurn(msg))
	}
	return turns, nil
}

func (c *conversationService) AppendTurn(ctx context.Context, turn store.Turn) error {
	id, err := parseSessionID(turn.SessionID)
	if err != nil {
		return err
	}

	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatMessageRepository().Create(ctx, &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       turn.Content,
		Role:          turn.Role,
		ChatSessionId: id,
		CreatedAt:     createdAt,
	})
}

func (c *conversationService) GetTurns(ctx context.Context, sessionID uuid.UUID, limit int) (*dto.SessionTurnsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	messages, err := c.recentMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}

	res := &dto.SessionTurnsResponse{
		SessionId: sessionID.String(),
		Turns:     make([]*dto.SessionTurnResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		res.Turns = append(res.Turns, &dto.SessionTurnResponse{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return res, nil
}

// DeleteSession removes a session and all of its turns in one transaction.
// It reports false when the session does not exist.
func (c *conversationService) DeleteSession(ctx context.Context, sessionID uuid.UUID) (deleted bool, err error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !deleted {
			_ = uow.Rollback()
		}
	}()

	count, err := uow.ChatSessionRepository().Count(ctx, specification.ByID{ID: sessionID})
	if err != nil || count == 0 {
		return false, err
	}
	if err = uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionID); err != nil {
		return false, err
	}
	if err = uow.ChatSessionRepository().Delete(ctx, sessionID); err != nil {
		return false, err
	}
	if err = uow.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// recentMessages loads the newest limit messages and returns them ascending.
func (c *conversationService) recentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]*entity.ChatMessage, error) {
	specs := []specification.Specification{
		specification.ByChatSessionID{ChatSessionID: sessionID},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if limit > 0 {
		specs = append(specs, specification.Pagination{Limit: limit})
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func parseSessionID(sessionID string) (uuid.UUID, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return uuid.Nil, apperror.NewInputError("sessionId", "must be a valid UUID")
	}
	return id, nil
}

func sessionSource(externalUserID string) string {
	if i := strings.Index(externalUserID, ":"); i > 0 {
		return externalUserID[:i]
	}
	return defaultSessionSource
}
