package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/ingestion"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

type DatasetHandler struct {
	sessions *session.Manager
}

func NewDatasetHandler(sessions *session.Manager) *DatasetHandler {
	return &DatasetHandler{
		sessions: sessions,
	}
}

func describe(snap *session.Snapshot) fiber.Map {
	return fiber.Map{
		"upload_id":   snap.UploadID,
		"file_name":   snap.FileName,
		"fingerprint": snap.Fingerprint,
		"loaded_at":   snap.LoadedAt.Format(time.RFC3339),
		"info":        analysis.GetDatasetInfo(snap.Dataset),
	}
}

// Upload replaces the active dataset with the multipart "file" field.
func (h *DatasetHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A CSV file is required in the 'file' field",
		})
	}

	f, err := header.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read uploaded file",
		})
	}
	defer f.Close()

	snap, err := h.sessions.Upload(header.Filename, f)
	if err != nil {
		var ingestErr *ingestion.IngestError
		var validationErr *ingestion.ValidationError
		switch {
		case errors.As(err, &ingestErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   err.Error(),
				"missing": validationErr.Missing,
			})
		}
		logger.Error("Failed to store upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store upload",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(describe(snap))
}

func (h *DatasetHandler) Current(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}
	return c.JSON(describe(snap))
}

func (h *DatasetHandler) Statistics(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}
	stats := analysis.ComputeOverallStatistics(snap.Dataset)
	present := make([]string, 0, 3)
	for _, p := range stats.Present() {
		present = append(present, string(p))
	}
	return c.JSON(fiber.Map{
		"statistics": stats,
		"platforms":  present,
	})
}

func (h *DatasetHandler) FilterOptions(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}
	return c.JSON(analysis.GetFilterOptions(snap.Dataset))
}
