package crawler

import (
	"strings"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/mattn/go-runewidth"
)

func TestFormatterDefault(t *testing.T) {
	got := Formatter{}.Format(domain.Article{Title: "GPT の新機能", URL: "https://example.com/a"})
	want := "🆕 新着記事: *GPT の新機能*\n🔗 https://example.com/a"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatterCustomHeader(t *testing.T) {
	got := Formatter{Header: "New article"}.Format(domain.Article{Title: "T", URL: "https://x"})
	if !strings.HasPrefix(got, "New article: *T*\n") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestFormatterTruncatesWideTitles(t *testing.T) {
	title := strings.Repeat("新", 20)
	got := Formatter{TitleWidth: 10}.Format(domain.Article{Title: title, URL: "https://x"})

	line := strings.SplitN(got, "\n", 2)[0]
	shown := strings.TrimSuffix(strings.TrimPrefix(line, DefaultMessageHeader+": *"), "*")
	if !strings.HasSuffix(shown, "…") {
		t.Fatalf("expected ellipsis, got %q", shown)
	}
	if w := runewidth.StringWidth(shown); w > 10 {
		t.Fatalf("title width %d exceeds 10", w)
	}
}
