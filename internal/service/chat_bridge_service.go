package service

import (
	"context"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/chatbot"
	"marketing-assistant-be/pkg/events"
	pktNats "marketing-assistant-be/pkg/nats"
)

const chatBridgeDurable = "marketing-assistant-chat"

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// MessageHandler is the chat-platform front door (chatbot.Handler).
type MessageHandler interface {
	Handle(ctx context.Context, msg chatbot.InboundMessage)
}

// IChatBridgeService feeds CHAT_MESSAGE_RECEIVED events from the bus into the
// chat front door. Replies leave as CHAT_REPLY_READY events.
type IChatBridgeService interface {
	Start(ctx context.Context) error
}

type chatBridgeService struct {
	subscriber EventSubscriber
	subject    string
	handler    MessageHandler
	logger     logger.ILogger
}

func NewChatBridgeService(subscriber EventSubscriber, subject string, handler MessageHandler, log logger.ILogger) IChatBridgeService {
	if log == nil {
		log = logger.Nop()
	}
	return &chatBridgeService{
		subscriber: subscriber,
		subject:    subject,
		handler:    handler,
		logger:     log,
	}
}

func (s *chatBridgeService) Start(ctx context.Context) error {
	return s.subscriber.Subscribe(ctx, s.subject, chatBridgeDurable, s.handle)
}

// handle never fails: duplicates are the delivery guard's job, so a nak
// would only cause a redelivery the guard drops anyway.
func (s *chatBridgeService) handle(ctx context.Context, event events.Event) error {
	msg := InboundFromEvent(event)
	if msg.EventID == "" || msg.UserID == "" {
		s.logger.Warn("CHAT_BRIDGE", "Dropping inbound chat event without id or user", map[string]interface{}{
			"event_type": event.EventType(),
		})
		return nil
	}

	s.handler.Handle(ctx, msg)
	return nil
}

// InboundFromEvent maps a CHAT_MESSAGE_RECEIVED payload to an inbound message.
func InboundFromEvent(event events.Event) chatbot.InboundMessage {
	userID := events.StringField(event, "userId")
	if userID != "" && !strings.Contains(userID, ":") {
		userID = "nats:" + userID
	}

	return chatbot.InboundMessage{
		EventID:     event.EventID(),
		UserID:      userID,
		ChannelID:   events.StringField(event, "channelId"),
		Content:     events.StringField(event, "content"),
		IsDirect:    boolField(event, "isDirect"),
		MentionsBot: boolField(event, "mentionsBot"),
		AuthorIsBot: boolField(event, "authorIsBot"),
		BotUserID:   events.StringField(event, "botUserId"),
	}
}

func boolField(e events.Event, key string) bool {
	if e.Payload() == nil {
		return false
	}
	v, _ := e.Payload()[key].(bool)
	return v
}

// eventTransport answers on the bus instead of a chat platform.
type eventTransport struct {
	publisher events.Publisher
}

func NewEventTransport(publisher events.Publisher) chatbot.Transport {
	return &eventTransport{publisher: publisher}
}

func (t *eventTransport) Reply(ctx context.Context, msg chatbot.InboundMessage, content string) error {
	return t.publisher.Publish(ctx, events.NewChatReplyReady(msg.EventID, msg.ChannelID, content))
}

func (t *eventTransport) Typing(context.Context, chatbot.InboundMessage) error {
	return nil
}
