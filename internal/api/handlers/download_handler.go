package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/exports"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

const presignExpiry = 15 * time.Minute

type DownloadHandler struct {
	sessions  *session.Manager
	publisher *exports.Publisher
}

// NewDownloadHandler builds the handler. publisher may be nil, which
// disables publishing.
func NewDownloadHandler(sessions *session.Manager, publisher *exports.Publisher) *DownloadHandler {
	return &DownloadHandler{
		sessions:  sessions,
		publisher: publisher,
	}
}

func (h *DownloadHandler) List(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	subsets := append([]analysis.Subset{analysis.CompleteDataset(snap.Dataset)}, analysis.BuildSubsets(snap.Dataset)...)
	out := make([]fiber.Map, 0, len(subsets))
	for _, s := range subsets {
		out = append(out, fiber.Map{
			"name":      s.Name,
			"slug":      s.Slug(),
			"file_name": s.FileName,
			"rows":      s.Data.Len(),
			"columns":   s.Data.Columns(),
		})
	}
	return c.JSON(fiber.Map{"downloads": out})
}

// Get streams one subset as a CSV attachment.
func (h *DownloadHandler) Get(c *fiber.Ctx) error {
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	sub, ok := analysis.FindSubset(snap.Dataset, c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Download '%s' not found", c.Params("slug")),
		})
	}

	var buf bytes.Buffer
	if err := sub.Data.WriteCSV(&buf); err != nil {
		logger.Error("Failed to render download", zap.String("file", sub.FileName), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render download",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(sub.FileName)
	return c.Send(buf.Bytes())
}

// Publish writes every download to the export store. Stores that support
// presigning also return a URL per object.
func (h *DownloadHandler) Publish(c *fiber.Ctx) error {
	if h.publisher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Export store is not configured",
		})
	}
	snap, err := currentSnapshot(c, h.sessions)
	if snap == nil {
		return err
	}

	manifest, err := h.publisher.Publish(c.UserContext(), snap.Dataset, snap.Fingerprint)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to publish exports",
		})
	}

	resp := fiber.Map{
		"driver":   h.publisher.Store().Driver(),
		"manifest": manifest,
	}
	if presigner, ok := h.publisher.Store().(exports.Presigner); ok {
		urls := make(map[string]string, len(manifest.Objects))
		for _, obj := range manifest.Objects {
			u, err := presigner.PresignURL(c.UserContext(), obj.Key, presignExpiry)
			if err != nil {
				logger.Warn("Failed to presign export", zap.String("key", obj.Key), zap.Error(err))
				continue
			}
			urls[obj.Key] = u
		}
		resp["urls"] = urls
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}
