// Package handlers contains the thin HTTP adapters over the analysis pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/analyzer"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
	"github.com/KaayaanAi/mcp-crypto-news/internal/webhook"
)

const newsAnalysisTool = "news_analysis"

// How long a detached webhook delivery may outlive the request.
const webhookDeliveryWindow = 30 * time.Second

// MCPHandler serves the JSON-RPC 2.0 endpoint.
type MCPHandler struct {
	analyzer *analyzer.Analyzer
	notifier *webhook.Notifier
	logger   *logrus.Logger
}

// NewMCPHandler creates the MCP endpoint handler.
func NewMCPHandler(a *analyzer.Analyzer, n *webhook.Notifier, logger *logrus.Logger) *MCPHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &MCPHandler{analyzer: a, notifier: n, logger: logger}
}

// HandleMCP dispatches tools/list and tools/call requests.
func (h *MCPHandler) HandleMCP(c *gin.Context) {
	var req models.MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewMCPError(nil, models.MCPErrInvalidRequest, "Invalid request", err.Error()))
		return
	}

	requestID := fmt.Sprintf("mcp_%v_%s", req.ID, time.Now().UTC().Format("150405"))
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
	}).Info("MCP request")

	switch req.Method {
	case "tools/list":
		c.JSON(http.StatusOK, models.NewMCPResult(req.ID, gin.H{"tools": toolDefinitions()}))
	case "tools/call":
		h.handleToolCall(c, req, requestID)
	default:
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrMethodNotFound,
			fmt.Sprintf("Unknown method: %s", req.Method), nil))
	}
}

func (h *MCPHandler) handleToolCall(c *gin.Context, req models.MCPRequest, requestID string) {
	toolName, _ := req.Params["name"].(string)
	if toolName != newsAnalysisTool {
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrInvalidParams,
			fmt.Sprintf("Unknown tool: %s", toolName), nil))
		return
	}

	arguments, _ := req.Params["arguments"].(map[string]interface{})

	if rawNews, ok := arguments["news"]; ok {
		h.handleBatchCall(c, req, requestID, rawNews)
		return
	}

	h.handleSingleCall(c, req, requestID, arguments)
}

func (h *MCPHandler) handleSingleCall(c *gin.Context, req models.MCPRequest, requestID string, arguments map[string]interface{}) {
	title, _ := arguments["title"].(string)
	summary, _ := arguments["summary"].(string)

	item := models.NewsItem{Title: title, Summary: summary}
	if err := item.Validate(); err != nil {
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrInvalidParams,
			"Both 'title' and 'summary' required", err.Error()))
		return
	}

	result := h.analyzer.AnalyzeSingle(c.Request.Context(), item.Title, item.Summary, requestID)

	h.logger.WithField("request_id", requestID).Info("Single analysis completed")
	c.JSON(http.StatusOK, models.NewMCPResult(req.ID, result))
}

func (h *MCPHandler) handleBatchCall(c *gin.Context, req models.MCPRequest, requestID string, rawNews interface{}) {
	items, err := decodeNewsItems(rawNews)
	if err != nil {
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrInvalidParams,
			"Invalid batch news format", err.Error()))
		return
	}

	batch := models.BatchRequest{News: items}
	if err := batch.Validate(); err != nil {
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrInvalidParams,
			"Invalid batch news format", err.Error()))
		return
	}

	results, err := h.analyzer.AnalyzeBatch(c.Request.Context(), batch.News, requestID)
	if err != nil {
		c.JSON(http.StatusOK, models.NewMCPError(req.ID, models.MCPErrInternal, "Internal error", err.Error()))
		return
	}

	DeliverWebhook(h.notifier, h.logger, results, requestID)

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"items":      len(results),
	}).Info("Batch analysis completed")
	c.JSON(http.StatusOK, models.NewMCPResult(req.ID, results))
}

// decodeNewsItems converts the raw JSON-RPC argument into typed news items.
func decodeNewsItems(rawNews interface{}) ([]models.NewsItem, error) {
	encoded, err := json.Marshal(rawNews)
	if err != nil {
		return nil, err
	}
	var items []models.NewsItem
	if err := json.Unmarshal(encoded, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// DeliverWebhook fires the batch notification without blocking the response.
func DeliverWebhook(notifier *webhook.Notifier, logger *logrus.Logger, results []models.Analysis, requestID string) {
	if notifier == nil || !notifier.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), webhookDeliveryWindow)
		defer cancel()
		if !notifier.SendBatchResults(ctx, results, requestID) {
			logger.WithField("request_id", requestID).Warn("Webhook delivery reported failure")
		}
	}()
}

// toolDefinitions describes the tools exposed through tools/list.
func toolDefinitions() []gin.H {
	return []gin.H{{
		"name":        newsAnalysisTool,
		"description": "Analyze cryptocurrency news for sentiment and market impact (single or batch)",
		"inputSchema": gin.H{
			"type": "object",
			"properties": gin.H{
				"title":   gin.H{"type": "string", "description": "News headline (single mode)"},
				"summary": gin.H{"type": "string", "description": "News description (single mode)"},
				"news": gin.H{
					"type":        "array",
					"description": "Array of news items for batch processing",
					"items": gin.H{
						"type": "object",
						"properties": gin.H{
							"title":   gin.H{"type": "string"},
							"summary": gin.H{"type": "string"},
						},
						"required": []string{"title", "summary"},
					},
				},
			},
		},
	}}
}
