package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
)

// sitemapFetcher reads a Google News sitemap (urlset with news:news entries).
type sitemapFetcher struct {
	client HTTPClient
	log    Logger
}

// NewSitemapFetcher builds a fetcher for sources that publish a news sitemap.
func NewSitemapFetcher(client HTTPClient, log Logger) Fetcher {
	if client == nil {
		client = DefaultHTTPClient(0)
	}
	return &sitemapFetcher{client: client, log: logger.Ensure(log)}
}

func (f *sitemapFetcher) ID() string {
	return TypeSitemap
}

type newsSitemap struct {
	URLs []newsSitemapURL `xml:"url"`
}

type newsSitemapURL struct {
	Loc  string `xml:"loc"`
	News struct {
		Title           string `xml:"title"`
		PublicationDate string `xml:"publication_date"`
	} `xml:"news"`
}

func (f *sitemapFetcher) Fetch(ctx context.Context, src Source) ([]domain.Article, error) {
	if !strings.EqualFold(src.Type, TypeSitemap) {
		return nil, fmt.Errorf("sitemap fetcher received incompatible source type %q", src.Type)
	}
	if strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("source %q url is empty", src.ID)
	}

	resp, err := f.client.Get(ctx, src.URL, Headers(src))
	if err != nil {
		return nil, fmt.Errorf("fetch %s sitemap: %w", src.ID, err)
	}
	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s sitemap returned status %d body: %s", src.ID, resp.StatusCode(), responseSnippet(body))
	}

	var sitemap newsSitemap
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil, fmt.Errorf("decode %s sitemap: %w", src.ID, err)
	}

	articles := make([]domain.Article, 0, len(sitemap.URLs))
	for i, entry := range sitemap.URLs {
		loc := strings.TrimSpace(entry.Loc)
		title := collapseSpace(entry.News.Title)
		if loc == "" || title == "" {
			f.log.WarnObj("sitemap entry skipped", "card_skip", map[string]any{
				"source_id": src.ID,
				"index":     i,
				"has_url":   loc != "",
				"has_title": title != "",
			})
			continue
		}

		art := domain.Article{
			Title:     title,
			URL:       loc,
			Published: strings.TrimSpace(entry.News.PublicationDate),
		}
		if ts, err := time.Parse(time.RFC3339, art.Published); err == nil {
			art.PublishedAt = ts
		}
		articles = append(articles, art)
	}
	return articles, nil
}
