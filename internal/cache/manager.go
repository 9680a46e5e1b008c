package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/KaayaanAi/mcp-crypto-news/internal/database"
	"github.com/KaayaanAi/mcp-crypto-news/internal/models"
)

// Key namespaces. Analysis results and rate-limit counters never collide.
const (
	analysisKeyPrefix  = "news:"
	rateLimitKeyPrefix = "rate_limit:"
)

// Stats holds cache lookup counters for the metrics endpoint.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Total  int64 `json:"total"`
}

// Manager provides analysis-result caching and rate limiting on top of Redis.
// Every operation fails open: when Redis is absent or unreachable, reads behave
// as misses, writes become no-ops and rate-limit checks allow the request.
type Manager struct {
	redis  *database.RedisClient
	logger *logrus.Logger

	mu    sync.Mutex
	stats Stats
}

// NewManager creates a cache manager. The Redis client may be nil, in which
// case the manager degrades to pass-through behavior.
func NewManager(redis *database.RedisClient, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		redis:  redis,
		logger: logger,
	}
}

// AnalysisKey derives the deterministic cache key for a news item. A
// collision-tolerant hash is sufficient here; a collision only yields a stale
// cache answer, never a pipeline fault.
func AnalysisKey(title, summary string) string {
	h := fnv.New64a()
	h.Write([]byte(title))
	h.Write([]byte(summary))
	return fmt.Sprintf("%s%x", analysisKeyPrefix, h.Sum64())
}

// GetAnalysis looks up a cached verdict. The second return is false on miss,
// on decode failure and whenever Redis is unavailable.
func (m *Manager) GetAnalysis(ctx context.Context, key string) (*models.Analysis, bool) {
	if m.redis == nil {
		return nil, false
	}

	value, err := m.redis.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			m.logger.WithError(err).Warn("Cache get failed")
		}
		m.recordLookup(false)
		return nil, false
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(value), &analysis); err != nil {
		m.logger.WithError(err).Warn("Cached analysis is not decodable, treating as miss")
		m.recordLookup(false)
		return nil, false
	}

	m.recordLookup(true)
	return &analysis, true
}

// SetAnalysis stores a verdict with the given TTL. Failures are logged, never
// surfaced.
func (m *Manager) SetAnalysis(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) {
	if m.redis == nil {
		return
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		m.logger.WithError(err).Error("Failed to encode analysis for caching")
		return
	}

	if err := m.redis.Set(ctx, key, payload, ttl); err != nil {
		m.logger.WithError(err).Warn("Cache set failed")
	}
}

// DeleteAnalysis removes a cached verdict.
func (m *Manager) DeleteAnalysis(ctx context.Context, key string) bool {
	if m.redis == nil {
		return false
	}
	if err := m.redis.Delete(ctx, key); err != nil {
		m.logger.WithError(err).Warn("Cache delete failed")
		return false
	}
	return true
}

// AllowRequest checks the rate limit for an identifier and counts the request
// against the current window. The first request of a window creates the
// counter with the window TTL. Returns true when the request is allowed,
// including whenever Redis is unavailable.
func (m *Manager) AllowRequest(ctx context.Context, identifier string, limit int, window time.Duration) bool {
	if m.redis == nil {
		return true
	}

	key := rateLimitKeyPrefix + identifier

	created, err := m.redis.SetNX(ctx, key, 1, window)
	if err != nil {
		m.logger.WithError(err).Warn("Rate limit check failed, allowing request")
		return true
	}
	if created {
		return true
	}

	count, err := m.redis.Incr(ctx, key)
	if err != nil {
		m.logger.WithError(err).Warn("Rate limit increment failed, allowing request")
		return true
	}

	return count <= int64(limit)
}

// RateLimitStatus reports the current counter state for an identifier.
type RateLimitStatus struct {
	Count     int64 `json:"count"`
	Remaining int64 `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// GetRateLimitStatus returns the window counter for an identifier. On any
// Redis failure the status reads as an empty window.
func (m *Manager) GetRateLimitStatus(ctx context.Context, identifier string, limit int) RateLimitStatus {
	status := RateLimitStatus{Remaining: int64(limit)}
	if m.redis == nil {
		return status
	}

	key := rateLimitKeyPrefix + identifier

	value, err := m.redis.Get(ctx, key)
	if err != nil {
		return status
	}

	var count int64
	if _, err := fmt.Sscanf(value, "%d", &count); err != nil {
		return status
	}

	status.Count = count
	status.Remaining = int64(limit) - count
	if status.Remaining < 0 {
		status.Remaining = 0
	}

	if ttl, err := m.redis.TTL(ctx, key); err == nil && ttl > 0 {
		status.ResetTime = time.Now().Add(ttl).Unix()
	}
	return status
}

// IsConnected reports whether the Redis backend is reachable.
func (m *Manager) IsConnected(ctx context.Context) bool {
	if m.redis == nil {
		return false
	}
	return m.redis.HealthCheck(ctx) == nil
}

// GetStats returns a snapshot of the lookup counters.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) recordLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.stats.Hits++
	} else {
		m.stats.Misses++
	}
	m.stats.Total++
}
