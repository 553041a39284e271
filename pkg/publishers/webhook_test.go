package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
)

func TestWebhookPublisherPostsTextOnly(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	pub, err := newWebhookPublisher(context.Background(), WebhookConfig(srv.URL, 2), nil)
	if err != nil {
		t.Fatalf("newWebhookPublisher: %v", err)
	}

	evt := NewEvent("src", "🆕 新着記事: *T*\n🔗 https://a", domain.Article{Title: "T", URL: "https://a"})
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(body) != 1 {
		t.Fatalf("expected body with only text key, got %#v", body)
	}
	if body["text"] != evt.Text {
		t.Fatalf("text = %#v", body["text"])
	}
}

func TestWebhookPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub, err := newWebhookPublisher(context.Background(), WebhookConfig(srv.URL, 1), nil)
	if err != nil {
		t.Fatalf("newWebhookPublisher: %v", err)
	}
	if err := pub.Publish(context.Background(), Event{Text: "x"}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestWebhookPublisherRequiresConfig(t *testing.T) {
	if _, err := newWebhookPublisher(context.Background(), PublisherConfig{ID: "w", Type: TypeWebhook}, nil); err == nil {
		t.Fatalf("expected error for missing webhook block")
	}
}
