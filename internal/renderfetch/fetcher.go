// Package renderfetch fetches the live rendered DOM of a page through a
// headless browser. Health scans use it when the site builds parts of the
// page client-side, so link and schema counts reflect what visitors (and
// crawlers executing JS) actually receive.
package renderfetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Fetcher owns one shared browser; each fetch runs in its own tab.
type Fetcher struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
}

// New starts the shared headless browser.
func New(timeout time.Duration) *Fetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
	)

	allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &Fetcher{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       timeout,
	}
}

// Close shuts the browser down.
func (f *Fetcher) Close() {
	f.browserCancel()
}

// Fetch navigates to targetURL and returns the rendered document HTML.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, f.timeout)
	defer timeoutCancel()

	// Honor caller cancellation on top of the per-fetch budget.
	go func() {
		select {
		case <-ctx.Done():
			timeoutCancel()
		case <-timeoutCtx.Done():
		}
	}()

	var pageHTML string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		return "", fmt.Errorf("failed to fetch rendered page %s: %w", targetURL, err)
	}
	return pageHTML, nil
}
