package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/chat"
	"github.com/guideline-analyzer/backend/internal/middleware/ratelimit"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

type ChatHandler struct {
	sessions *session.Manager
	engine   *chat.Engine
}

// NewChatHandler builds the handler. engine is nil when no language model is
// configured; chat then answers 503.
func NewChatHandler(sessions *session.Manager, engine *chat.Engine) *ChatHandler {
	return &ChatHandler{
		sessions: sessions,
		engine:   engine,
	}
}

// activeSnapshot is the current dataset or nil; chat works without one.
func activeSnapshot(sessions *session.Manager) *session.Snapshot {
	snap, err := sessions.Current()
	if err != nil {
		return nil
	}
	return snap
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	if h.engine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Chat is not configured",
		})
	}

	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		req.SessionID = c.Get(ratelimit.SessionHeader)
	}

	resp, err := h.engine.ProcessMessage(c.UserContext(), activeSnapshot(h.sessions), chat.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is required"})
		}
		logger.Error("Failed to process chat message", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "The assistant is unavailable right now",
		})
	}

	return c.JSON(resp)
}

func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id", c.Get(ratelimit.SessionHeader))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if h.engine == nil {
		return c.JSON(fiber.Map{"history": []any{}})
	}

	msgs, err := h.engine.History(sessionID, c.QueryInt("limit", 50))
	if err != nil {
		logger.Error("Failed to load chat history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load chat history",
		})
	}

	history := make([]fiber.Map, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, fiber.Map{
			"id":         m.ID,
			"question":   m.Question,
			"answer":     m.Answer,
			"tool_calls": m.ToolCalls,
			"latency_ms": m.LatencyMS,
			"created_at": m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"history": history})
}
