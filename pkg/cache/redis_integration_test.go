//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
)

// Run with: COLLAGEFM_REDIS_URL=redis://localhost:6379/15 go test -tags integration ./pkg/cache
func TestRedisCache(t *testing.T) {
	url := os.Getenv("COLLAGEFM_REDIS_URL")
	if url == "" {
		t.Skip("COLLAGEFM_REDIS_URL not set")
	}
	c, err := NewRedisCache(url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.Ping(context.Background()); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	exerciseCache(t, c)
}
