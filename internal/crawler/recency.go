package crawler

import (
	"fmt"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
)

// RecencyFilter keeps records published within Window of now.
type RecencyFilter struct {
	Window   time.Duration
	Location *time.Location
	Layout   string
	Now      func() time.Time

	log logger.Logger
}

// NewRecencyFilter returns nil when window is not positive, which disables filtering.
func NewRecencyFilter(window time.Duration, loc *time.Location, layout string, log logger.Logger) *RecencyFilter {
	if window <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecencyFilter{
		Window:   window,
		Location: loc,
		Layout:   layout,
		Now:      time.Now,
		log:      logger.Ensure(log),
	}
}

// Apply drops records older than now-Window. The bound is inclusive.
// Records whose timestamp cannot be parsed are dropped with a warning.
func (f *RecencyFilter) Apply(articles []domain.Article) []domain.Article {
	if f == nil {
		return articles
	}

	now := f.Now().In(f.Location)
	cutoff := now.Add(-f.Window)

	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		published, err := f.publishedAt(a, now)
		if err != nil {
			f.log.WarnObj("dropping article with unparseable timestamp", "recency_parse_error", map[string]any{
				"url":       a.URL,
				"published": a.Published,
				"error":     err.Error(),
			})
			continue
		}
		if published.Before(cutoff) {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// publishedAt resolves the record timestamp. Layouts without a year take the
// current year in Location; a result more than a day ahead is moved back a year.
func (f *RecencyFilter) publishedAt(a domain.Article, now time.Time) (time.Time, error) {
	if !a.PublishedAt.IsZero() {
		return a.PublishedAt, nil
	}
	if a.Published == "" {
		return time.Time{}, fmt.Errorf("no timestamp")
	}

	t, err := time.ParseInLocation(f.Layout, a.Published, f.Location)
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() != 0 {
		return t, nil
	}

	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), f.Location)
	if t.After(now.Add(24 * time.Hour)) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, nil
}
