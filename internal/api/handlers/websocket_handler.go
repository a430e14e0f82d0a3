package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/chat"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

type WebSocketHandler struct {
	sessions *session.Manager
	engine   *chat.Engine
}

func NewWebSocketHandler(sessions *session.Manager, engine *chat.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		engine:   engine,
	}
}

type wsMessage struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	SessionID string `json:"session_id"`
}

// HandleConnection answers {"type":"message"} frames, streaming each answer
// word by word followed by a "complete" frame.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg wsMessage
		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			return
		}

		if msg.Type != "message" {
			continue
		}
		if h.engine == nil {
			h.sendError(c, "Chat is not configured")
			continue
		}

		if err := h.streamResponse(c, msg); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process message")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, msg wsMessage) error {
	if err := h.send(c, "status", "Thinking..."); err != nil {
		return err
	}

	resp, err := h.engine.ProcessMessage(context.Background(), activeSnapshot(h.sessions), chat.Request{
		Message:   msg.Content,
		SessionID: msg.SessionID,
	})
	if err != nil {
		return err
	}

	for _, chunk := range splitIntoChunks(resp.Answer) {
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return c.WriteJSON(map[string]any{
		"type":       "complete",
		"message_id": resp.ID,
		"session_id": resp.SessionID,
		"tool_calls": resp.ToolCalls,
		"latency_ms": resp.LatencyMS,
	})
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]any{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	_ = c.WriteJSON(map[string]any{
		"type":  "error",
		"error": errorMsg,
	})
}

// splitIntoChunks cuts text after each space or newline so the chunks
// concatenate back to the original.
func splitIntoChunks(text string) []string {
	var chunks []string
	for len(text) > 0 {
		i := strings.IndexAny(text, " \n")
		if i < 0 {
			chunks = append(chunks, text)
			break
		}
		chunks = append(chunks, text[:i+1])
		text = text[i+1:]
	}
	return chunks
}
