package sources

import (
	"context"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/Adda-Baaj/khobor-watch/pkg/httpclient"
)

// Fetcher retrieves the current article listing for a source.
// Implementations differ only in how the page is obtained (plain GET, headless
// browser, structured feed); callers never see the strategy.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, src Source) ([]domain.Article, error)
}

// FetcherRegistry resolves the fetcher implementation for a given source.
type FetcherRegistry interface {
	FetcherFor(src Source) (Fetcher, error)
}

// HTTPClient aliases the shared httpclient.Client interface for clarity within sources.
type HTTPClient = httpclient.Client

// Logger aliases the shared structured logger.
type Logger = logger.Logger
