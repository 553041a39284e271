package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

// renderFunc loads pageURL in a browser, waits for waitSel and returns the
// rendered document plus the final URL.
type renderFunc func(ctx context.Context, pageURL, waitSel string, headers map[string]string) (html, finalURL string, err error)

// renderedFetcher drives a headless Chrome so client-rendered listings are visible.
type renderedFetcher struct {
	render renderFunc
	log    Logger
}

// NewRenderedFetcher builds a fetcher backed by a headless browser.
func NewRenderedFetcher(timeout time.Duration, log Logger) Fetcher {
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	return &renderedFetcher{
		render: chromeRenderer(timeout, chromedp.DefaultExecAllocatorOptions[:]),
		log:    logger.Ensure(log),
	}
}

func (f *renderedFetcher) ID() string {
	return TypeRendered
}

func (f *renderedFetcher) Fetch(ctx context.Context, src Source) ([]domain.Article, error) {
	if !strings.EqualFold(src.Type, TypeRendered) {
		return nil, fmt.Errorf("rendered fetcher received incompatible source type %q", src.Type)
	}
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	ex, err := newExtractor(src, f.log)
	if err != nil {
		return nil, err
	}

	waitSel := ConfigString(src, ConfigWaitSelectorKey, ex.card)
	start := time.Now()
	html, finalURL, err := f.render(ctx, src.URL, waitSel, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("render %s page: %w", src.ID, err)
	}
	f.log.DebugObj("page rendered", "render_meta", map[string]any{
		"source_id":  src.ID,
		"final_url":  finalURL,
		"bytes":      len(html),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if finalURL == "" {
		finalURL = src.URL
	}
	return ex.Extract([]byte(html), finalURL)
}

// chromeRenderer starts one browser per call; a run renders a single page.
func chromeRenderer(timeout time.Duration, opts []chromedp.ExecAllocatorOption) renderFunc {
	return func(ctx context.Context, pageURL, waitSel string, headers map[string]string) (string, string, error) {
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()

		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
		defer cancelBrowser()

		runCtx, cancel := context.WithTimeout(browserCtx, timeout)
		defer cancel()

		var actions []chromedp.Action
		if len(headers) > 0 {
			extra := make(network.Headers, len(headers))
			for k, v := range headers {
				extra[k] = v
			}
			actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(extra))
		}

		var html, finalURL string
		actions = append(actions,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady(waitSel, chromedp.ByQuery),
			chromedp.Location(&finalURL),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)

		if err := chromedp.Run(runCtx, actions...); err != nil {
			return "", "", err
		}
		return html, finalURL, nil
	}
}
