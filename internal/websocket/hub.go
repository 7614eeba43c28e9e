package websocket

import (
	"sync"

	"marketing-assistant-be/internal/pkg/logger"
)

// Hub tracks the live chat connections of this process.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]*Client),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID})
		}
	}
}

// Send queues data for one client. It reports false when the client is gone
// or its buffer is full.
func (h *Hub) Send(clientID string, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping message", map[string]interface{}{"client_id": clientID})
		return false
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
