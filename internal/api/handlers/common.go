package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/guideline-analyzer/backend/internal/session"
)

// currentSnapshot writes a 409 and returns nil when no dataset is loaded.
func currentSnapshot(c *fiber.Ctx, sessions *session.Manager) (*session.Snapshot, error) {
	snap, err := sessions.Current()
	if errors.Is(err, session.ErrNoDataset) {
		return nil, c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "No dataset loaded. Upload a CSV first.",
		})
	}
	return snap, err
}

// splitList parses a comma-separated query value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
