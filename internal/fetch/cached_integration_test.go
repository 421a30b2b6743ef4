//go:build integration

package fetch

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedScraper_ReusesPosting(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping integration test")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	url := "https://jobs.lever.co/acme/integration-" + time.Now().Format("150405.000")
	t.Cleanup(func() { _ = client.Del(ctx, postingKey(url)).Err() })

	calls := 0
	c := NewCachedScraper(ScraperFunc(func(_ context.Context, u string) (*JobPosting, error) {
		calls++
		return &JobPosting{URL: u, Company: "Acme", Location: "Austin, TX"}, nil
	}), client, time.Minute, nil)

	first, err := c.Scrape(ctx, url)
	require.NoError(t, err)
	second, err := c.Scrape(ctx, url)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Company, second.Company)
	assert.Equal(t, first.Location, second.Location)
}
