package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
)

const maxHTMLBodyBytes = 4 << 20 // 4 MiB

// staticFetcher downloads the listing page with a plain GET and parses it as-is.
// It only sees markup present in the server response.
type staticFetcher struct {
	client HTTPClient
	log    Logger
}

// NewStaticFetcher builds a fetcher for server-rendered listing pages.
func NewStaticFetcher(client HTTPClient, log Logger) Fetcher {
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return &staticFetcher{client: client, log: logger.Ensure(log)}
}

func (f *staticFetcher) ID() string {
	return TypeStatic
}

func (f *staticFetcher) Fetch(ctx context.Context, src Source) ([]domain.Article, error) {
	if !strings.EqualFold(src.Type, TypeStatic) {
		return nil, fmt.Errorf("static fetcher received incompatible source type %q", src.Type)
	}
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	ex, err := newExtractor(src, f.log)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, src.URL, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", src.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s page returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}
	if len(body) > maxHTMLBodyBytes {
		f.log.InfoObj("html body truncated", "truncation", map[string]any{
			"source_id": src.ID,
			"original":  len(body),
			"kept":      maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	pageURL := resp.URL()
	if pageURL == "" {
		pageURL = src.URL
	}
	return ex.Extract(body, pageURL)
}
