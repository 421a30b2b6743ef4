package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPostingCacheTTL is how long a scraped posting is reused.
const DefaultPostingCacheTTL = 7 * 24 * time.Hour

// Scraper scrapes one posting.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*JobPosting, error)
}

// ScraperFunc adapts a function to Scraper.
type ScraperFunc func(ctx context.Context, url string) (*JobPosting, error)

func (f ScraperFunc) Scrape(ctx context.Context, url string) (*JobPosting, error) {
	return f(ctx, url)
}

// NewScraper returns a Scraper calling ScrapeJobPosting with opts.
func NewScraper(opts *ScrapeOptions) Scraper {
	return ScraperFunc(func(ctx context.Context, url string) (*JobPosting, error) {
		return ScrapeJobPosting(ctx, url, opts)
	})
}

// CachedScraper reuses postings stored in Redis. Cache failures fall
// through to a live scrape; only postings with details are stored.
type CachedScraper struct {
	next   Scraper
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedScraper wraps next with a Redis cache. A non-positive ttl means
// DefaultPostingCacheTTL.
func NewCachedScraper(next Scraper, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedScraper {
	if ttl <= 0 {
		ttl = DefaultPostingCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedScraper{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedScraper) Scrape(ctx context.Context, url string) (*JobPosting, error) {
	key := postingKey(url)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p JobPosting
		if jerr := json.Unmarshal(data, &p); jerr == nil {
			return &p, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable cached posting", slog.String("url", url))
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "posting cache unavailable", slog.String("url", url), slog.Any("error", err))
	}

	p, err := c.next.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	if !p.Found() {
		return p, nil
	}
	if data, jerr := json.Marshal(p); jerr == nil {
		if serr := c.client.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.logger.WarnContext(ctx, "failed to cache posting", slog.String("url", url), slog.Any("error", serr))
		}
	}
	return p, nil
}

func postingKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "outreach:posting:" + hex.EncodeToString(sum[:])
}
