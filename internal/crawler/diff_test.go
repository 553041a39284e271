package crawler

import (
	"reflect"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

func TestNewArticles(t *testing.T) {
	tests := []struct {
		name    string
		current []domain.Article
		seen    *domain.SeenSet
		want    []string
	}{
		{
			name:    "set difference by url",
			current: []domain.Article{{Title: "b", URL: "https://b"}, {Title: "a2", URL: "https://a"}},
			seen:    domain.SeenSetFromURLs("https://a"),
			want:    []string{"https://b"},
		},
		{
			name:    "nil seen set",
			current: []domain.Article{{URL: "https://x"}, {URL: "https://y"}},
			want:    []string{"https://x", "https://y"},
		},
		{
			name:    "duplicate within fetch",
			current: []domain.Article{{URL: "https://x"}, {URL: "https://y"}, {URL: "https://x"}},
			seen:    domain.NewSeenSet(),
			want:    []string{"https://x", "https://y"},
		},
		{
			name: "empty fetch",
			seen: domain.SeenSetFromURLs("https://a"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range NewArticles(tt.current, tt.seen) {
				got = append(got, a.URL)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewArticlesKeepsFirstRecordForDuplicateURL(t *testing.T) {
	got := NewArticles([]domain.Article{{Title: "first", URL: "https://x"}, {Title: "second", URL: "https://x"}}, nil)
	if len(got) != 1 || got[0].Title != "first" {
		t.Fatalf("unexpected %#v", got)
	}
}
