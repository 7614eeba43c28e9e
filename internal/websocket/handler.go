package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, onMessage MessageFunc) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		ID:        uuid.NewString(),
		Send:      make(chan []byte, 64),
		onMessage: onMessage,
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
