package domain

import "testing"

func TestSeenSetKeepsFirstRecordPerURL(t *testing.T) {
	s := NewSeenSet(
		Article{Title: "a", URL: "https://a"},
		Article{Title: "b", URL: "https://b"},
		Article{Title: "a2", URL: "https://a"},
	)

	if s.Len() != 2 {
		t.Fatalf("expected 2 urls, got %d", s.Len())
	}
	recs := s.Records()
	if recs[0].Title != "a" || recs[1].URL != "https://b" {
		t.Fatalf("unexpected records %#v", recs)
	}
	if s.Add(Article{Title: "again", URL: "https://b"}) {
		t.Fatalf("Add reported an existing url as new")
	}
	if s.Add(Article{Title: "no url"}) {
		t.Fatalf("Add accepted an empty url")
	}
}

func TestSeenSetNilIsEmpty(t *testing.T) {
	var s *SeenSet
	if s.Has("x") || s.Len() != 0 || s.URLs() != nil {
		t.Fatalf("nil set should behave as empty")
	}
}

func TestSeenSetFromURLs(t *testing.T) {
	s := SeenSetFromURLs("https://b", "https://a", "https://b")
	urls := s.URLs()
	if len(urls) != 2 || urls[0] != "https://b" || urls[1] != "https://a" {
		t.Fatalf("URLs = %#v", urls)
	}
}
