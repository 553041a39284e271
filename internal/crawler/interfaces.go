package crawler

import (
	"context"

	"github.com/Adda-Baaj/khobor-watch/pkg/publishers"
)

// EventPublisher delivers one event to every configured sink.
// It reports how many sinks accepted it and the joined failures.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
