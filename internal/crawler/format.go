package crawler

import (
	"fmt"
	"strings"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/mattn/go-runewidth"
)

const (
	DefaultMessageHeader     = "🆕 新着記事"
	DefaultMessageTitleWidth = 120
)

// Formatter renders the chat message for one article.
type Formatter struct {
	Header     string
	TitleWidth int
}

// Format returns "<header>: *<title>*\n🔗 <url>", truncating the title to TitleWidth display cells.
func (f Formatter) Format(a domain.Article) string {
	header := strings.TrimSpace(f.Header)
	if header == "" {
		header = DefaultMessageHeader
	}
	width := f.TitleWidth
	if width <= 0 {
		width = DefaultMessageTitleWidth
	}

	title := runewidth.Truncate(a.Title, width, "…")
	return fmt.Sprintf("%s: *%s*\n🔗 %s", header, title, a.URL)
}
