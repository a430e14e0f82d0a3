package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/session"
)

// ToolHandler exposes the dispatch table to programmatic clients.
type ToolHandler struct {
	sessions   *session.Manager
	dispatcher *agent.Dispatcher
}

func NewToolHandler(sessions *session.Manager, dispatcher *agent.Dispatcher) *ToolHandler {
	return &ToolHandler{
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

func (h *ToolHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tools": agent.Specs()})
}

// Call always answers 200 with the result records; failures are carried as
// a single {"Error": ...} record.
func (h *ToolHandler) Call(c *fiber.Ctx) error {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var (
		ds          *guideline.Dataset
		fingerprint string
	)
	if snap, err := h.sessions.Current(); err == nil {
		ds, fingerprint = snap.Dataset, snap.Fingerprint
	}

	result := h.dispatcher.Call(c.UserContext(), ds, fingerprint, req.Name, req.Arguments)
	return c.JSON(fiber.Map{
		"name":   req.Name,
		"result": result,
	})
}
