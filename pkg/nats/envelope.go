package nats

import (
	"encoding/json"
	"time"

	"marketing-assistant-be/pkg/events"
)

// envelope is the wire format of every event on the bus.
type envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data"`
}

func encode(event events.Event) ([]byte, error) {
	return json.Marshal(envelope{
		ID:         event.EventID(),
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
}

// decode accepts an envelope or, for producers that do not wrap their
// events, a bare payload object; fallbackID and fallbackType fill the gaps.
func decode(raw []byte, fallbackID, fallbackType string) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return events.BaseEvent{}, err
	}

	if env.Type == "" && env.Data == nil {
		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return events.BaseEvent{}, err
		}
		env.Data = payload
		if id, ok := payload["eventId"].(string); ok {
			env.ID = id
		}
	}

	if env.ID == "" {
		env.ID = fallbackID
	}
	if env.Type == "" {
		env.Type = fallbackType
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}

	return events.BaseEvent{
		ID:         env.ID,
		Type:       env.Type,
		Data:       env.Data,
		OccurredAt: env.OccurredAt,
	}, nil
}
