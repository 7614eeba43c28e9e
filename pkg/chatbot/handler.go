// Package chatbot is the chat-platform front door. It is transport
// agnostic: Discord, the NATS bridge and tests plug in through Transport.
package chatbot

import (
	"context"
	"time"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/events"
	"marketing-assistant-be/pkg/store"
)

// Transport delivers replies on the originating platform.
type Transport interface {
	Reply(ctx context.Context, msg InboundMessage, content string) error
	Typing(ctx context.Context, msg InboundMessage) error
}

type Guard interface {
	Admit(ctx context.Context, eventID string) bool
	Deliver(ctx context.Context, eventID string, send func(ctx context.Context) error) (bool, error)
}

type SessionResolver interface {
	Resolve(ctx context.Context, externalUserID string) (string, error)
}

// ConversationStore persists turns. History returns turns oldest first.
type ConversationStore interface {
	History(ctx context.Context, sessionID string, limit int) ([]store.Turn, error)
	AppendTurn(ctx context.Context, turn store.Turn) error
}

type Processor interface {
	Process(ctx context.Context, query string, priorTurns []store.Turn) store.Result
}

type Config struct {
	Channel      string // "discord", "nats"
	Prefix       string
	HistoryLimit int
}

type Handler struct {
	transport    Transport
	guard        Guard
	sessions     SessionResolver
	conversation ConversationStore
	processor    Processor
	publisher    events.Publisher
	cfg          Config
	logger       logger.ILogger
}

func NewHandler(
	transport Transport,
	guard Guard,
	sessions SessionResolver,
	conversation ConversationStore,
	processor Processor,
	publisher events.Publisher,
	cfg Config,
	log logger.ILogger,
) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	return &Handler{
		transport:    transport,
		guard:        guard,
		sessions:     sessions,
		conversation: conversation,
		processor:    processor,
		publisher:    publisher,
		cfg:          cfg,
		logger:       log,
	}
}

// Handle processes one inbound message. Every admitted event gets exactly
// one reply attempt; redeliveries and untriggered messages are ignored.
func (h *Handler) Handle(ctx context.Context, msg InboundMessage) {
	if msg.AuthorIsBot {
		h.logger.Debug("CHATBOT", "Ignoring bot message", map[string]interface{}{"event_id": msg.EventID})
		return
	}

	query, trigger, ok := ParseTrigger(msg, h.cfg.Prefix)
	if !ok {
		return
	}

	if !h.guard.Admit(ctx, msg.EventID) {
		return
	}

	h.logger.Info("CHATBOT", "Processing new message", map[string]interface{}{
		"event_id":   msg.EventID,
		"user_id":    msg.UserID,
		"channel_id": msg.ChannelID,
		"trigger":    string(trigger),
	})

	if err := h.transport.Typing(ctx, msg); err != nil {
		h.logger.Warn("CHATBOT", "Failed to send typing indicator", map[string]interface{}{"error": err.Error()})
	}

	reply := h.respond(ctx, msg, query)

	if _, err := h.guard.Deliver(ctx, msg.EventID, func(ctx context.Context) error {
		return h.send(ctx, msg, reply)
	}); err != nil {
		h.logger.Error("CHATBOT", "Failed to send message", map[string]interface{}{
			"event_id":       msg.EventID,
			"content_length": len(reply),
			"error":          err.Error(),
		})

		if _, err := h.guard.Deliver(ctx, msg.EventID, func(ctx context.Context) error {
			return h.transport.Reply(ctx, msg, MsgSendFailed)
		}); err != nil {
			h.logger.Error("CHATBOT", "Failed to send error message to user", map[string]interface{}{
				"event_id": msg.EventID,
				"error":    err.Error(),
			})
		}
	}
}

// respond runs the session, history and orchestration steps and returns reply text.
func (h *Handler) respond(ctx context.Context, msg InboundMessage, query string) string {
	if query == "" {
		return MsgEmptyQuery
	}

	sessionID, err := h.sessions.Resolve(ctx, msg.UserID)
	if err != nil {
		h.logger.Error("CHATBOT", "Failed to get/create chat session", map[string]interface{}{
			"user_id": msg.UserID,
			"error":   err.Error(),
		})
		return FormatReply(store.Result{Error: err.Error()})
	}

	history, err := h.conversation.History(ctx, sessionID, h.cfg.HistoryLimit)
	if err != nil {
		h.logger.Error("CHATBOT", "Failed to get chat history", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		history = nil
	}

	if err := h.conversation.AppendTurn(ctx, store.Turn{
		SessionID: sessionID,
		Role:      store.RoleUser,
		Content:   query,
		CreatedAt: time.Now(),
	}); err != nil {
		h.logger.Error("CHATBOT", "Failed to store user message", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return FormatReply(store.Result{Error: err.Error()})
	}

	result := h.processor.Process(ctx, query, history)

	if !result.Failed() {
		if err := h.conversation.AppendTurn(ctx, store.Turn{
			SessionID: sessionID,
			Role:      store.RoleAssistant,
			Content:   result.Content,
			CreatedAt: time.Now(),
		}); err != nil {
			h.logger.Error("CHATBOT", "Failed to store assistant message", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	if err := h.publisher.Publish(ctx, events.NewChatTurnCompleted(sessionID, msg.EventID, h.cfg.Channel, result.Sources, result.Failed())); err != nil {
		h.logger.Warn("CHATBOT", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}

	return FormatReply(result)
}

func (h *Handler) send(ctx context.Context, msg InboundMessage, content string) error {
	parts := SplitMessage(content, MaxMessageLength)
	if len(parts) == 1 {
		return h.transport.Reply(ctx, msg, content)
	}

	h.logger.Info("CHATBOT", "Response exceeds message limit, splitting", map[string]interface{}{
		"event_id":     msg.EventID,
		"total_length": len(content),
		"chunks":       len(parts),
	})

	if err := h.transport.Reply(ctx, msg, MsgTooLong); err != nil {
		return err
	}
	for _, part := range parts {
		if err := h.transport.Reply(ctx, msg, part); err != nil {
			return err
		}
	}
	return nil
}
