package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/KaayaanAi/mcp-crypto-news/internal/cache"
	"github.com/KaayaanAi/mcp-crypto-news/internal/webhook"
)

// HealthHandler serves the health, metrics and webhook self-test endpoints.
type HealthHandler struct {
	cache     *cache.Manager
	notifier  *webhook.Notifier
	version   string
	startTime time.Time
}

// HealthResponse is the health-check body.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Version     string `json:"version"`
	Timestamp   string `json:"timestamp"`
	RedisStatus string `json:"redis_status"`
	Uptime      string `json:"uptime"`
}

// NewHealthHandler creates the operational-endpoints handler.
func NewHealthHandler(cacheManager *cache.Manager, notifier *webhook.Notifier, version string) *HealthHandler {
	return &HealthHandler{
		cache:     cacheManager,
		notifier:  notifier,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthCheck reports service and Redis status. The service stays healthy
// without Redis; the cache fails open.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	redisStatus := "disconnected"
	if h.cache.IsConnected(c.Request.Context()) {
		redisStatus = "connected"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Service:     "mcp-crypto-news",
		Version:     h.version,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		RedisStatus: redisStatus,
		Uptime:      time.Since(h.startTime).String(),
	})
}

// Metrics reports cache counters plus process statistics.
func (h *HealthHandler) Metrics(c *gin.Context) {
	stats := h.cache.GetStats()

	metrics := gin.H{
		"cache_hits":      stats.Hits,
		"cache_misses":    stats.Misses,
		"total_requests":  stats.Total,
		"redis_connected": h.cache.IsConnected(c.Request.Context()),
		"goroutines":      runtime.NumGoroutine(),
		"uptime_seconds":  int64(time.Since(h.startTime).Seconds()),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		metrics["memory_used_percent"] = vm.UsedPercent
	}

	c.JSON(http.StatusOK, metrics)
}

// WebhookTest posts a canned payload to the configured webhook.
func (h *HealthHandler) WebhookTest(c *gin.Context) {
	if h.notifier == nil || !h.notifier.Enabled() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook not configured"})
		return
	}

	if err := h.notifier.Test(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook test sent"})
}
