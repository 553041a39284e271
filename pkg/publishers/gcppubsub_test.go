package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

func TestGCPPubSubSenderPublishes(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "topic-1"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	sender, err := newGCPPubSubSender(ctx, &GCPQueueConfig{ProjectID: "test-project", Topic: "topic-1"}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubSender: %v", err)
	}

	if err := sender.Send(ctx, NewEvent("p1", "msg", domain.Article{Title: "T", URL: "https://a"})); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes[sourceAttribute] != "p1" {
		t.Fatalf("source_id attribute = %q", msgs[0].Attributes[sourceAttribute])
	}
	var evt Event
	if err := json.Unmarshal(msgs[0].Data, &evt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if evt.Article.URL != "https://a" {
		t.Fatalf("unexpected article %#v", evt.Article)
	}
}
