package publishers

import (
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

// Event is one new-article notification.
// Text is the rendered chat message; sinks that carry structured payloads also get the article.
type Event struct {
	SourceID   string         `json:"source_id"`
	Text       string         `json:"text"`
	Article    domain.Article `json:"article"`
	DetectedAt time.Time      `json:"detected_at"`
}

// NewEvent constructs an Event for the given source + article.
func NewEvent(sourceID, text string, article domain.Article) Event {
	return Event{
		SourceID:   sourceID,
		Text:       text,
		Article:    article,
		DetectedAt: time.Now().UTC(),
	}
}
