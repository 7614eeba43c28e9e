package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_SendAndUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := &Client{Hub: hub, ID: "c1", Send: make(chan []byte, 1)}
	hub.register <- client
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, hub.Send("c1", []byte(`{"type":"reply"}`)))
	assert.Equal(t, `{"type":"reply"}`, string(<-client.Send))

	assert.True(t, hub.Send("c1", []byte("a")))
	assert.False(t, hub.Send("c1", []byte("b")), "buffer full")
	assert.False(t, hub.Send("missing", []byte("x")))

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, hub.Send("c1", []byte("x")))
}

func TestClient_SessionID(t *testing.T) {
	c := &Client{}
	assert.Empty(t, c.SessionID())
	c.SetSessionID("s-1")
	assert.Equal(t, "s-1", c.SessionID())
}
