package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/agent"
	"github.com/guideline-analyzer/backend/internal/api"
	"github.com/guideline-analyzer/backend/internal/api/handlers"
	"github.com/guideline-analyzer/backend/internal/cache/redis"
	"github.com/guideline-analyzer/backend/internal/chat"
	"github.com/guideline-analyzer/backend/internal/exports"
	"github.com/guideline-analyzer/backend/internal/images"
	"github.com/guideline-analyzer/backend/internal/llm"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/internal/middleware/ratelimit"
	"github.com/guideline-analyzer/backend/internal/session"
	"github.com/guideline-analyzer/backend/internal/storage/sqlite"
	"github.com/guideline-analyzer/backend/pkg/config"
	appLogger "github.com/guideline-analyzer/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Guideline Analyzer API Server")
	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	checks := map[string]handlers.Check{
		"sqlite": func(context.Context) error { return sqliteClient.Ping() },
	}

	var cache agent.Cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, tool results will not be cached", zap.Error(err))
		} else {
			defer redisClient.Close()
			cache = redisClient
			checks["redis"] = redisClient.Ping
		}
	}
	dispatcher := agent.NewDispatcher(cache, time.Duration(cfg.Redis.TTLSec)*time.Second)

	sessions := session.NewManager(cfg.Storage.UploadDir, sqliteClient)
	if redisClient != nil {
		sessions.OnReplace(func(*session.Snapshot) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := redisClient.InvalidateResults(ctx); err != nil {
				appLogger.Warn("Failed to invalidate cached tool results", zap.Error(err))
			}
		})
	}
	if _, err := sessions.RestoreLatest(); err != nil {
		appLogger.Warn("Failed to restore latest upload", zap.Error(err))
	}

	var publisher *exports.Publisher
	store, err := exports.Open(context.Background(), cfg.Exports, cfg.Storage.DownloadDir)
	if err != nil {
		appLogger.Warn("Export store unavailable, publishing disabled", zap.Error(err))
	} else {
		publisher = exports.NewPublisher(store, cfg.Exports.Prefix)
	}

	prober := images.NewProber(time.Duration(cfg.Images.ProbeTimeoutSec)*time.Second, cfg.Images.MaxConcurrent)

	var engine *chat.Engine
	if cfg.LLM.APIKey != "" {
		engine = chat.NewEngine(llm.NewClient(cfg.LLM), dispatcher, sqliteClient)
	} else {
		appLogger.Warn("No LLM API key configured, chat is disabled")
	}

	limiter := ratelimit.New(ratelimit.Config{
		PerMinute: cfg.RateLimit.ChatPerMinute,
		Logger:    appLogger.Named("ratelimit"),
	})
	defer limiter.Stop()

	app := api.NewApp(api.Deps{
		Server:      cfg.Server,
		Sessions:    sessions,
		Dispatcher:  dispatcher,
		Engine:      engine,
		Publisher:   publisher,
		Prober:      prober,
		RateLimiter: limiter,
		Checks:      checks,
		AccessLog:   true,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
