package handler

import (
	"context"
	"encoding/json"
	"strings"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/internal/pkg/serverutils"
	"marketing-assistant-be/internal/service"
	internalWS "marketing-assistant-be/internal/websocket"
	"marketing-assistant-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	frameTypeReply = "reply"
	frameTypeError = "error"
)

// ChatFrame is one server-to-client websocket message.
type ChatFrame struct {
	Type    string            `json:"type"`
	Data    *dto.ChatResponse `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
}

// ChatWsHandler serves the chat over a websocket. Each text frame is a
// dto.ChatRequest; the connection remembers its session between frames.
type ChatWsHandler struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatWsHandler(chatService service.IChatService, hub *internalWS.Hub, log logger.ILogger) *ChatWsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ChatWsHandler{
		chatService: chatService,
		hub:         hub,
		logger:      log,
	}
}

func (h *ChatWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
}

func (h *ChatWsHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatWsHandler", "Starting WebSocket chat", nil)
		internalWS.ServeWs(h.hub, conn, h.OnMessage)
		h.logger.Info("ChatWsHandler", "WebSocket chat ended", nil)
	})(c)
}

// OnMessage answers one frame from client.
func (h *ChatWsHandler) OnMessage(client *internalWS.Client, payload []byte) {
	frame := h.Answer(context.Background(), client.ID, client.SessionID(), payload)
	if frame.Data != nil && frame.Data.SessionId != "" {
		client.SetSessionID(frame.Data.SessionId)
	}

	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("ChatWsHandler", "Failed to encode frame", map[string]interface{}{"error": err.Error()})
		return
	}
	if !h.hub.Send(client.ID, data) {
		h.logger.Warn("ChatWsHandler", "Reply dropped, client gone", map[string]interface{}{"client_id": client.ID})
	}
}

// Answer turns a raw request frame into a reply frame. A request without
// sessionId continues the connection's current session.
func (h *ChatWsHandler) Answer(ctx context.Context, clientID, currentSession string, payload []byte) ChatFrame {
	var req dto.ChatRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		// Plain text frames are accepted as the message itself
		req = dto.ChatRequest{Message: string(payload)}
	}
	if strings.TrimSpace(req.SessionId) == "" {
		req.SessionId = currentSession
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ChatFrame{Type: frameTypeError, Message: err.Error()}
	}

	res, err := h.chatService.Chat(ctx, "ws:"+clientID, &req)
	if err != nil {
		message := "Internal server error"
		if apperror.IsInputError(err) {
			message = err.Error()
		}
		h.logger.Error("ChatWsHandler", "Chat failed", map[string]interface{}{
			"client_id": clientID,
			"error":     err.Error(),
		})
		return ChatFrame{Type: frameTypeError, Message: message}
	}

	return ChatFrame{Type: frameTypeReply, Data: res}
}
