package listing

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Renderer loads a URL in a browser and returns the fully rendered markup.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// BrowserOptions configures BrowserRenderer.
type BrowserOptions struct {
	Headless    bool
	ScrollPause time.Duration
	MaxScrolls  int
	Timeout     time.Duration
}

// BrowserRenderer drives headless Chrome through chromedp. It scrolls to the
// bottom of the page until the document height stops growing so lazy-loaded
// entries are present in the returned markup.
type BrowserRenderer struct {
	opts BrowserOptions
}

// NewBrowserRenderer creates a BrowserRenderer, filling unset options with defaults.
func NewBrowserRenderer(opts BrowserOptions) *BrowserRenderer {
	if opts.ScrollPause == 0 {
		opts.ScrollPause = time.Second
	}
	if opts.MaxScrolls == 0 {
		opts.MaxScrolls = 200
	}
	if opts.Timeout == 0 {
		opts.Timeout = 3 * time.Minute
	}
	return &BrowserRenderer{opts: opts}
}

const (
	heightJS       = `document.body.scrollHeight`
	scrollBottomJS = `window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`
)

// Render navigates to targetURL, scrolls until the page stops growing, and
// returns the document's outer HTML.
func (r *BrowserRenderer) Render(ctx context.Context, targetURL string) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", r.opts.Headless),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(browserCtx, r.opts.Timeout)
	defer timeoutCancel()

	var height int64
	if err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(heightJS, &height),
	); err != nil {
		return "", eris.Wrapf(err, "listing: navigate %s", targetURL)
	}

	scrolls, err := scrollUntilStable(timeoutCtx, height, r.opts.MaxScrolls, r.scrollOnce)
	if err != nil {
		return "", err
	}

	var html string
	if err := chromedp.Run(timeoutCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", eris.Wrap(err, "listing: read page html")
	}

	zap.L().Debug("listing: page rendered",
		zap.String("url", targetURL),
		zap.Int("scrolls", scrolls),
		zap.Int("bytes", len(html)),
	)
	return html, nil
}

// scrollFunc scrolls the page to the bottom, waits for new entries, and
// returns the resulting document height.
type scrollFunc func(ctx context.Context) (int64, error)

func (r *BrowserRenderer) scrollOnce(ctx context.Context) (int64, error) {
	var ignored, height int64
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(scrollBottomJS, &ignored),
		chromedp.Sleep(r.opts.ScrollPause),
	); err != nil {
		return 0, eris.Wrap(err, "listing: scroll")
	}
	if err := chromedp.Run(ctx, chromedp.Evaluate(heightJS, &height)); err != nil {
		return 0, eris.Wrap(err, "listing: read scroll height")
	}
	return height, nil
}

// scrollUntilStable scrolls until two consecutive heights match or
// maxScrolls is reached, and returns the number of scrolls performed.
func scrollUntilStable(ctx context.Context, height int64, maxScrolls int, scroll scrollFunc) (int, error) {
	for i := 0; i < maxScrolls; i++ {
		next, err := scroll(ctx)
		if err != nil {
			return i, err
		}
		if next == height {
			return i + 1, nil
		}
		height = next
	}

	zap.L().Warn("listing: scroll limit reached", zap.Int("max_scrolls", maxScrolls))
	return maxScrolls, nil
}
