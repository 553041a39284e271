package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/mmcdole/gofeed"
)

// feedFetcher reads an RSS/Atom feed instead of scraping markup.
type feedFetcher struct {
	client HTTPClient
	parser *gofeed.Parser
	log    Logger
}

// NewFeedFetcher builds a fetcher for sources that publish a feed.
func NewFeedFetcher(client HTTPClient, log Logger) Fetcher {
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return &feedFetcher{
		client: client,
		parser: gofeed.NewParser(),
		log:    logger.Ensure(log),
	}
}

func (f *feedFetcher) ID() string {
	return TypeFeed
}

func (f *feedFetcher) Fetch(ctx context.Context, src Source) ([]domain.Article, error) {
	if !strings.EqualFold(src.Type, TypeFeed) {
		return nil, fmt.Errorf("feed fetcher received incompatible source type %q", src.Type)
	}
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	resp, err := f.client.Get(ctx, src.URL, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", src.ID, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s feed returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s feed: %w", src.ID, err)
	}

	base := resp.URL()
	if base == "" {
		base = src.URL
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		title := collapseSpace(item.Title)
		if link == "" || title == "" {
			f.log.WarnObj("feed item skipped", "card_skip", map[string]any{
				"source_id": src.ID,
				"index":     i,
				"has_url":   link != "",
				"has_title": title != "",
			})
			continue
		}

		art := domain.Article{
			Title:     title,
			URL:       resolveURL(link, base),
			Published: strings.TrimSpace(item.Published),
		}
		if item.PublishedParsed != nil {
			art.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, art)
	}
	return articles, nil
}
