// Package api wires the HTTP surface over the analysis pipeline.
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/analyzer"
	"github.com/KaayaanAi/mcp-crypto-news/internal/api/handlers"
	"github.com/KaayaanAi/mcp-crypto-news/internal/cache"
	"github.com/KaayaanAi/mcp-crypto-news/internal/config"
	"github.com/KaayaanAi/mcp-crypto-news/internal/middleware"
	"github.com/KaayaanAi/mcp-crypto-news/internal/webhook"
)

// Dependencies carries the constructed collaborators for route wiring. All of
// them are built once at startup and injected; no package-level state.
type Dependencies struct {
	Config   *config.Config
	Cache    *cache.Manager
	Analyzer *analyzer.Analyzer
	Notifier *webhook.Notifier
	Logger   *logrus.Logger
	Version  string
}

// SetupRoutes registers all endpoints on the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	corsConfig := cors.DefaultConfig()
	if len(deps.Config.Server.AllowedOrigins) == 1 && deps.Config.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.Config.Server.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"POST", "GET"}
	corsConfig.AllowHeaders = []string{"*"}
	router.Use(cors.New(corsConfig))

	auth := middleware.NewAuthMiddleware(deps.Config.Security.APIToken)
	rateLimit := middleware.NewRateLimitMiddleware(deps.Cache, deps.Config.RateLimit)

	mcpHandler := handlers.NewMCPHandler(deps.Analyzer, deps.Notifier, deps.Logger)
	analyzeHandler := handlers.NewAnalyzeHandler(deps.Analyzer, deps.Notifier, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Cache, deps.Notifier, deps.Version)

	// Health and metrics stay open; analysis endpoints require the API token
	// and count against the per-client rate limit.
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/metrics", healthHandler.Metrics)

	protected := router.Group("/")
	protected.Use(auth.RequireAuth(), rateLimit.Limit())
	{
		protected.POST("/mcp", mcpHandler.HandleMCP)
		protected.POST("/analyze", analyzeHandler.Analyze)
		protected.POST("/webhook-test", healthHandler.WebhookTest)
	}
}
