package validation

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var markupPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxMessageLength int
	Logger           *zap.Logger
}

const (
	chatPath   = "/api/v1/chat"
	uploadPath = "/api/v1/datasets"
	toolsPath  = "/api/v1/tools/call"
)

// Middleware checks request shape before handlers run: uploads must be
// multipart, chat messages must be bounded plain text, and tool calls must
// name a tool. It does not consume the body.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 4000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		switch c.Path() {
		case uploadPath:
			if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
				return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
					"error": "Upload must be multipart/form-data",
				})
			}

		case chatPath:
			var body struct {
				Message *string `json:"message"`
			}
			if err := json.Unmarshal(c.Body(), &body); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON format"})
			}
			if body.Message == nil || strings.TrimSpace(*body.Message) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Message is required and must be a string",
				})
			}
			msg := *body.Message
			if utf8.RuneCountInString(msg) > cfg.MaxMessageLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message exceeds maximum length"})
			}
			if strings.ContainsRune(msg, 0) || markupPattern.MatchString(msg) {
				cfg.Logger.Warn("Rejected chat message content", zap.String("ip", c.IP()))
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message content"})
			}

		case toolsPath:
			var body struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(c.Body(), &body); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON format"})
			}
			if strings.TrimSpace(body.Name) == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tool name is required"})
			}
		}

		return c.Next()
	}
}
