package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// settle is how long a rendered board gets to hydrate when none of its
// description containers appear.
const settle = 2 * time.Second

// Render loads a posting in headless Chrome and returns the hydrated HTML.
// It waits for one of the platform's description containers, then for the
// page to settle. Chrome or Chromium must be installed.
func Render(ctx context.Context, rawURL string, platform Platform, timeout time.Duration, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger.DebugContext(ctx, "rendering posting", slog.String("url", rawURL), slog.String("platform", string(platform)))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	ready := strings.Join(PlatformContentSelectors(platform), ", ")
	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			waitCtx, cancel := context.WithTimeout(ctx, timeout/2)
			defer cancel()
			if err := chromedp.WaitVisible(ready, chromedp.ByQuery).Do(waitCtx); err != nil {
				logger.DebugContext(ctx, "description container not visible", slog.String("url", rawURL), slog.Any("error", err))
			}
			return nil
		}),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.DebugContext(ctx, "rendered posting", slog.String("url", rawURL), slog.Int("bytes", len(html)))
	return html, nil
}
