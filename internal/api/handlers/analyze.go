package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/analyzer"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
	"github.com/KaayaanAi/mcp-crypto-news/internal/webhook"
)

// AnalyzeHandler serves the REST batch endpoint.
type AnalyzeHandler struct {
	analyzer *analyzer.Analyzer
	notifier *webhook.Notifier
	logger   *logrus.Logger
}

// NewAnalyzeHandler creates the REST analysis handler.
func NewAnalyzeHandler(a *analyzer.Analyzer, n *webhook.Notifier, logger *logrus.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AnalyzeHandler{analyzer: a, notifier: n, logger: logger}
}

// Analyze runs batch analysis for a REST submission.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	now := time.Now().UTC()
	requestID := fmt.Sprintf("rest_%s%06d", now.Format("150405"), now.Nanosecond()/1000)

	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.analyzer.AnalyzeBatch(c.Request.Context(), req.News, requestID)
	if err != nil {
		h.logger.WithField("request_id", requestID).WithError(err).Error("REST analysis error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Analysis failed: %v", err)})
		return
	}

	DeliverWebhook(h.notifier, h.logger, results, requestID)

	c.JSON(http.StatusOK, gin.H{
		"results":    results,
		"request_id": requestID,
	})
}
