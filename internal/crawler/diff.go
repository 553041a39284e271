package crawler

import "github.com/Adda-Baaj/khobor-watch/internal/domain"

// NewArticles returns the records of current whose URL is not in seen, in source order.
// A URL repeated within current is reported once, for its first occurrence.
func NewArticles(current []domain.Article, seen *domain.SeenSet) []domain.Article {
	var fresh []domain.Article
	batch := make(map[string]struct{}, len(current))
	for _, a := range current {
		if seen.Has(a.URL) {
			continue
		}
		if _, dup := batch[a.URL]; dup {
			continue
		}
		batch[a.URL] = struct{}{}
		fresh = append(fresh, a)
	}
	return fresh
}
