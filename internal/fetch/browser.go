package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// MinContentLength is the minimum page HTML length to consider an HTTP fetch
// useful. The tutorial portal renders its card grid client-side, so a short
// body usually means the content never loaded without JavaScript.
const MinContentLength = 500

// DefaultBrowserTimeout bounds one browser rendering attempt.
const DefaultBrowserTimeout = 30 * time.Second

// ShouldUseBrowser returns true if the fetched HTML is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(html string) bool {
	return len(strings.TrimSpace(html)) < MinContentLength
}

// RenderPage renders a page in a headless browser and returns the rendered HTML.
// Requires Chrome/Chromium to be installed on the system.
func RenderPage(ctx context.Context, url string, timeout time.Duration) (string, error) {
	logrus.WithField("url", url).Debug("rendering page in headless browser")

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering time to populate the tutorial cards.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners if present; ignore failures.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)

	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logrus.WithField("bytes", len(html)).Debug("browser rendering complete")
	return html, nil
}

// PageWithFallback fetches a page over plain HTTP, then falls back to headless
// browser rendering when the response looks like an unrendered SPA shell.
// Browser failures are not fatal as long as the HTTP fetch succeeded.
func (c *Client) PageWithFallback(ctx context.Context, urlStr string, useBrowser bool) (*PageResult, error) {
	result, err := c.Page(ctx, urlStr)
	if err != nil && !useBrowser {
		return result, err
	}

	needsBrowser := err != nil || ShouldUseBrowser(result.HTML)
	if !useBrowser || !needsBrowser {
		return result, err
	}

	html, browserErr := RenderPage(ctx, urlStr, DefaultBrowserTimeout)
	if browserErr != nil {
		logrus.WithField("url", urlStr).WithError(browserErr).Warn("browser fallback failed")
		return result, err
	}

	return &PageResult{
		URL:        urlStr,
		HTML:       html,
		StatusCode: 200,
	}, nil
}
