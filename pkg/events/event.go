package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeDocumentIngested    = "DOCUMENT_INGESTED"
	TypeChatMessageReceived = "CHAT_MESSAGE_RECEIVED"
	TypeChatTurnCompleted   = "CHAT_TURN_COMPLETED"
	TypeChatReplyReady      = "CHAT_REPLY_READY"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID is unique per occurrence; redeliveries carry the same id.
	EventID() string

	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher sends events to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func NewDocumentIngested(documentID string, metadata map[string]interface{}) BaseEvent {
	return newEvent(TypeDocumentIngested, map[string]interface{}{
		"documentId": documentID,
		"metadata":   metadata,
	})
}

func NewChatTurnCompleted(sessionID, inboundEventID, channel string, sources []string, failed bool) BaseEvent {
	return newEvent(TypeChatTurnCompleted, map[string]interface{}{
		"sessionId":      sessionID,
		"inboundEventId": inboundEventID,
		"channel":        channel,
		"sources":        sources,
		"failed":         failed,
	})
}

func NewChatReplyReady(inboundEventID, channelID, content string) BaseEvent {
	return newEvent(TypeChatReplyReady, map[string]interface{}{
		"inboundEventId": inboundEventID,
		"channelId":      channelID,
		"content":        content,
	})
}

// StringField reads a string value from an event payload.
func StringField(e Event, key string) string {
	if e == nil || e.Payload() == nil {
		return ""
	}
	if v, ok := e.Payload()[key].(string); ok {
		return v
	}
	return ""
}

// NopPublisher drops every event. Used when NATS is not connected.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
