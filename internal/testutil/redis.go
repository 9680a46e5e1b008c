// Package testutil provides shared helpers for Redis-backed tests.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/KaayaanAi/mcp-crypto-news/internal/database"
)

// NewTestRedis starts an in-memory Redis server and returns a wrapped client
// pointed at it. Both are cleaned up when the test finishes.
func NewTestRedis(t *testing.T) (*miniredis.Miniredis, *database.RedisClient) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, &database.RedisClient{Client: client}
}
