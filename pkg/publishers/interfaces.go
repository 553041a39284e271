package publishers

import (
	"context"

	"github.com/Adda-Baaj/khobor-watch/internal/logger"
)

// Publisher delivers one new-article event to a sink (chat webhook, queue, etc).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger aliases the shared structured logger.
type Logger = logger.Logger

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}
