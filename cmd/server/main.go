package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/analyzer"
	"github.com/KaayaanAi/mcp-crypto-news/internal/api"
	"github.com/KaayaanAi/mcp-crypto-news/internal/cache"
	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
	"github.com/KaayaanAi/mcp-crypto-news/internal/database"
	"github.com/KaayaanAi/mcp-crypto-news/internal/webhook"
)

const version = "2.1.0"

func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Redis is optional: without it the cache and rate limiter fail open.
	var redisClient *database.RedisClient
	if rc, err := database.NewRedisConnection(cfg.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, running with cache and rate limiting disabled")
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	// Explicit dependency wiring: each collaborator is constructed once and
	// passed down, no shared package state.
	cacheManager := cache.NewManager(redisClient, logger)
	llmClient := analyzer.NewLLMClient(cfg.OpenAI, logger)
	notifier := webhook.NewNotifier(cfg.Webhook, logger)
	newsAnalyzer := analyzer.New(cacheManager, llmClient, logger, cfg.AnalysisTTLDuration())

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, api.Dependencies{
		Config:   cfg,
		Cache:    cacheManager,
		Analyzer: newsAnalyzer,
		Notifier: notifier,
		Logger:   logger,
		Version:  version,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Server.Port,
			"version": version,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
