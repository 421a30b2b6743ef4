package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// JobPosting holds the details scraped from a posting page.
type JobPosting struct {
	URL         string   `json:"url"`
	Platform    Platform `json:"platform"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	RawLocation string   `json:"raw_location,omitempty"`
	Title       string   `json:"job_title"`
	Description string   `json:"description,omitempty"`
	Rendered    bool     `json:"rendered,omitempty"`
}

// Found reports whether a company or location was extracted.
func (p *JobPosting) Found() bool {
	return p.Company != "" || p.Location != ""
}

// ScrapeOptions configures ScrapeJobPosting.
type ScrapeOptions struct {
	Fetch *Options
	// UseBrowser renders the page with headless Chrome when the static HTML
	// yields neither company nor location.
	UseBrowser     bool
	BrowserTimeout time.Duration
	Logger         *slog.Logger
	// render replaces Render (tests).
	render func(ctx context.Context, url string) (string, error)
}

// ScrapeJobPosting fetches a posting and extracts company, location and title
// with board-specific selectors. Location is normalized; the raw text is kept.
func ScrapeJobPosting(ctx context.Context, urlStr string, opts *ScrapeOptions) (*JobPosting, error) {
	if strings.TrimSpace(urlStr) == "" {
		return nil, &Error{URL: urlStr, Message: "no job URL provided"}
	}
	if opts == nil {
		opts = &ScrapeOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	platform := DetectPlatform(urlStr)
	page, err := Get(ctx, urlStr, opts.Fetch)
	if err != nil && !opts.UseBrowser {
		return nil, err
	}

	posting := &JobPosting{URL: urlStr, Platform: platform}
	if err == nil {
		if perr := parsePosting(page.HTML, posting); perr != nil {
			return nil, &Error{URL: urlStr, Message: "failed to parse page", Cause: perr}
		}
	}
	if posting.Found() || !opts.UseBrowser {
		return posting, nil
	}

	logger.InfoContext(ctx, "static page had no posting details, rendering", slog.String("url", urlStr), slog.String("platform", string(platform)))
	render := opts.render
	if render == nil {
		timeout := opts.BrowserTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		render = func(ctx context.Context, u string) (string, error) {
			return Render(ctx, u, platform, timeout, logger)
		}
	}
	html, rerr := render(ctx, urlStr)
	if rerr != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: rerr}
	}

	rendered := &JobPosting{URL: urlStr, Platform: platform, Rendered: true}
	if perr := parsePosting(html, rendered); perr != nil {
		return nil, &Error{URL: urlStr, Message: "failed to parse rendered page", Cause: perr}
	}
	return rendered, nil
}

func parsePosting(html string, p *JobPosting) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	s := selectorsFor(p.Platform)
	p.Company = firstMatch(doc, s.Company)
	p.RawLocation = firstMatch(doc, s.Location)
	p.Location = NormalizeLocation(p.RawLocation)
	p.Title = firstMatch(doc, s.Title)

	if text, err := postingText(html, p.Platform); err == nil {
		p.Description = text
	}
	return nil
}

func firstMatch(doc *goquery.Document, candidates []fieldSelector) string {
	for _, c := range candidates {
		found := doc.Find(c.CSS).First()
		if found.Length() == 0 {
			continue
		}

		var v string
		if c.Attr != "" {
			v, _ = found.Attr(c.Attr)
		} else {
			v = found.Text()
		}
		if c.Split >= 0 {
			parts := strings.Split(v, " - ")
			if c.Split >= len(parts) {
				continue
			}
			v = parts[c.Split]
		}
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			return v
		}
	}
	return ""
}
