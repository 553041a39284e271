package domain

import "time"

// Domain contains core models and interfaces.

// Article is one item scraped from the watched listing page.
// URL is the identity key; two records with the same URL are the same article.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Published   string    `json:"published,omitempty"`
	PublishedAt time.Time `json:"-"`
}

// SeenSet is the ordered collection of article URLs already notified.
// Insertion order is kept so persisted state stays stable between runs.
type SeenSet struct {
	urls    []string
	records map[string]Article
}

// NewSeenSet builds a set from records, keeping the first record per URL.
func NewSeenSet(records ...Article) *SeenSet {
	s := &SeenSet{records: make(map[string]Article, len(records))}
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// SeenSetFromURLs builds a set holding bare URLs.
func SeenSetFromURLs(urls ...string) *SeenSet {
	s := NewSeenSet()
	for _, u := range urls {
		s.Add(Article{URL: u})
	}
	return s
}

// Has reports whether url was seen.
func (s *SeenSet) Has(url string) bool {
	if s == nil {
		return false
	}
	_, ok := s.records[url]
	return ok
}

// Add inserts the article and reports whether its URL was new.
func (s *SeenSet) Add(a Article) bool {
	if a.URL == "" || s.Has(a.URL) {
		return false
	}
	if s.records == nil {
		s.records = make(map[string]Article)
	}
	s.urls = append(s.urls, a.URL)
	s.records[a.URL] = a
	return true
}

// Len returns the number of URLs in the set.
func (s *SeenSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.urls)
}

// URLs returns the URLs in insertion order.
func (s *SeenSet) URLs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.urls))
	copy(out, s.urls)
	return out
}

// Records returns the stored records in insertion order.
func (s *SeenSet) Records() []Article {
	if s == nil {
		return nil
	}
	out := make([]Article, 0, len(s.urls))
	for _, u := range s.urls {
		out = append(out, s.records[u])
	}
	return out
}
