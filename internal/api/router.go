package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/api/handlers"
	"github.com/guideline-analyzer/backend/internal/chat"
	"github.com/guideline-analyzer/backend/internal/exports"
	"github.com/guideline-analyzer/backend/internal/images"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/internal/middleware/ratelimit"
	"github.com/guideline-analyzer/backend/internal/middleware/security"
	"github.com/guideline-analyzer/backend/internal/middleware/validation"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/pkg/config"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

// Deps are the services the HTTP surface is built from. Engine, Publisher
// and Prober may be nil.
type Deps struct {
	Server      config.ServerConfig
	Sessions    *session.Manager
	Dispatcher  *agent.Dispatcher
	Engine      *chat.Engine
	Publisher   *exports.Publisher
	Prober      *images.Prober
	RateLimiter *ratelimit.RateLimiter
	Checks      map[string]handlers.Check
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(d.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(d.Server.WriteTimeout) * time.Second,
		BodyLimit:    d.Server.BodyLimit,
	})

	origins := "*"
	if len(d.Server.AllowedOrigins) > 0 {
		origins = strings.Join(d.Server.AllowedOrigins, ",")
	}

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, " + ratelimit.SessionHeader,
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: d.Server.AllowedOrigins,
		IsDevelopment:  d.Server.IsDevelopment,
	}))
	app.Use(validation.Middleware(validation.Config{Logger: logger.Named("validation")}))

	datasetHandler := handlers.NewDatasetHandler(d.Sessions)
	guidelineHandler := handlers.NewGuidelineHandler(d.Sessions, d.Prober)
	downloadHandler := handlers.NewDownloadHandler(d.Sessions, d.Publisher)
	toolHandler := handlers.NewToolHandler(d.Sessions, d.Dispatcher)
	chatHandler := handlers.NewChatHandler(d.Sessions, d.Engine)
	healthHandler := handlers.NewHealthHandler(d.Checks)

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")

	api.Post("/datasets", datasetHandler.Upload)
	api.Get("/datasets/current", datasetHandler.Current)
	api.Get("/statistics", datasetHandler.Statistics)
	api.Get("/filters", datasetHandler.FilterOptions)

	api.Get("/guidelines", guidelineHandler.List)
	api.Get("/guidelines/:code", guidelineHandler.Detail)
	api.Get("/performance", guidelineHandler.Performance)
	api.Get("/performance/platforms", guidelineHandler.Platforms)

	api.Get("/downloads", downloadHandler.List)
	api.Post("/downloads/publish", downloadHandler.Publish)
	api.Get("/downloads/:slug", downloadHandler.Get)

	api.Get("/tools", toolHandler.List)
	api.Post("/tools/call", toolHandler.Call)

	chatRoutes := []fiber.Handler{chatHandler.HandleChat}
	if d.RateLimiter != nil {
		chatRoutes = append([]fiber.Handler{d.RateLimiter.Middleware()}, chatRoutes...)
	}
	api.Post("/chat", chatRoutes...)
	api.Get("/chat/history", chatHandler.GetChatHistory)

	api.Get("/health", healthHandler.Health)
	api.Get("/ready", healthHandler.Ready)

	wsHandler := handlers.NewWebSocketHandler(d.Sessions, d.Engine)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	return app
}
