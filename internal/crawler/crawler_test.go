package crawler

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/storage"
	"github.com/Adda-Baaj/khobor-watch/pkg/publishers"
	"github.com/Adda-Baaj/khobor-watch/pkg/sources"
)

// fakeFetcher returns preset articles or an error.
type fakeFetcher struct {
	articles []domain.Article
	err      error
	calls    int
}

func (f *fakeFetcher) ID() string { return "fake" }
func (f *fakeFetcher) Fetch(context.Context, sources.Source) ([]domain.Article, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeRegistry struct {
	fetcher sources.Fetcher
}

func (f *fakeRegistry) FetcherFor(sources.Source) (sources.Fetcher, error) {
	if f.fetcher == nil {
		return nil, errors.New("missing fetcher")
	}
	return f.fetcher, nil
}

// fakePublisher records events and fails the URLs listed in failURL.
type fakePublisher struct {
	events  []publishers.Event
	failURL map[string]bool
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.failURL[evt.Article.URL] {
		return 0, errors.New("webhook response status 500")
	}
	return 1, nil
}

func (f *fakePublisher) urls() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Article.URL)
	}
	return out
}

// memStore is an in-memory storage.Store.
type memStore struct {
	seen    *domain.SeenSet
	found   bool
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) (*domain.SeenSet, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	if m.seen == nil {
		return domain.NewSeenSet(), false, nil
	}
	return domain.NewSeenSet(m.seen.Records()...), m.found, nil
}

func (m *memStore) Save(_ context.Context, seen *domain.SeenSet) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.seen = domain.NewSeenSet(seen.Records()...)
	m.found = true
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestService(fetcher *fakeFetcher, store *memStore, pub *fakePublisher, policy storage.Policy) *Service {
	return NewService(&fakeRegistry{fetcher: fetcher}, store, pub, Options{Policy: policy})
}

var testSource = sources.Source{ID: "aggregator", Type: sources.TypeStatic, URL: "https://example.com/"}

func TestRunScenarioHistory(t *testing.T) {
	store := &memStore{seen: domain.SeenSetFromURLs("https://a"), found: true}
	pub := &fakePublisher{}
	fetcher := &fakeFetcher{articles: []domain.Article{
		{Title: "b", URL: "https://b"},
		{Title: "a2", URL: "https://a"},
	}}

	res, err := newTestService(fetcher, store, pub, storage.PolicyHistory).Run(context.Background(), testSource)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := pub.urls(); !reflect.DeepEqual(got, []string{"https://b"}) {
		t.Fatalf("notified %v, want [https://b]", got)
	}
	if got := store.seen.URLs(); !reflect.DeepEqual(got, []string{"https://a", "https://b"}) {
		t.Fatalf("persisted %v", got)
	}
	want := Result{Fetched: 2, Filtered: 2, New: 1, Notified: 1, Persisted: true}
	if res != want {
		t.Fatalf("result %+v, want %+v", res, want)
	}
}

func TestRunMessageText(t *testing.T) {
	pub := &fakePublisher{}
	fetcher := &fakeFetcher{articles: []domain.Article{{Title: "新しいモデル", URL: "https://b"}}}
	if _, err := newTestService(fetcher, &memStore{}, pub, storage.PolicyHistory).Run(context.Background(), testSource); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected one event")
	}
	if got, want := pub.events[0].Text, "🆕 新着記事: *新しいモデル*\n🔗 https://b"; got != want {
		t.Fatalf("text %q, want %q", got, want)
	}
	if pub.events[0].SourceID != testSource.ID {
		t.Fatalf("source id %q", pub.events[0].SourceID)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	fetched := []domain.Article{{Title: "x", URL: "https://x"}, {Title: "y", URL: "https://y"}}

	for _, policy := range []storage.Policy{storage.PolicyHistory, storage.PolicySnapshot} {
		t.Run(string(policy), func(t *testing.T) {
			store := &memStore{}
			pub := &fakePublisher{}
			svc := newTestService(&fakeFetcher{articles: fetched}, store, pub, policy)

			if _, err := svc.Run(context.Background(), testSource); err != nil {
				t.Fatalf("first Run: %v", err)
			}
			res, err := svc.Run(context.Background(), testSource)
			if err != nil {
				t.Fatalf("second Run: %v", err)
			}
			if len(pub.events) != 2 || res.New != 0 {
				t.Fatalf("second run notified again: events=%d new=%d", len(pub.events), res.New)
			}
			wantSaves := 1
			if policy == storage.PolicySnapshot {
				wantSaves = 2
			}
			if store.saves != wantSaves {
				t.Fatalf("saves=%d want %d", store.saves, wantSaves)
			}
		})
	}
}

func TestRunSnapshotReplacesAndRenotifiesReappearing(t *testing.T) {
	store := &memStore{}
	pub := &fakePublisher{}
	fetcher := &fakeFetcher{articles: []domain.Article{{Title: "a", URL: "https://a"}}}
	svc := newTestService(fetcher, store, pub, storage.PolicySnapshot)

	mustRun := func() {
		t.Helper()
		if _, err := svc.Run(context.Background(), testSource); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}

	mustRun()
	fetcher.articles = []domain.Article{{Title: "b", URL: "https://b"}}
	mustRun()
	if got := store.seen.URLs(); !reflect.DeepEqual(got, []string{"https://b"}) {
		t.Fatalf("snapshot persisted %v", got)
	}
	fetcher.articles = []domain.Article{{Title: "a", URL: "https://a"}}
	mustRun()
	if got := pub.urls(); !reflect.DeepEqual(got, []string{"https://a", "https://b", "https://a"}) {
		t.Fatalf("notified %v", got)
	}
}

func TestRunPreservesOrderAndIgnoresTitleChanges(t *testing.T) {
	store := &memStore{seen: domain.NewSeenSet(domain.Article{Title: "old title", URL: "https://2"}), found: true}
	pub := &fakePublisher{}
	fetcher := &fakeFetcher{articles: []domain.Article{
		{Title: "3", URL: "https://3"},
		{Title: "new title", URL: "https://2"},
		{Title: "1", URL: "https://1"},
		{Title: "3 again", URL: "https://3"},
		{Title: "0", URL: "https://0"},
	}}

	if _, err := newTestService(fetcher, store, pub, storage.PolicyHistory).Run(context.Background(), testSource); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := pub.urls(); !reflect.DeepEqual(got, []string{"https://3", "https://1", "https://0"}) {
		t.Fatalf("notified %v", got)
	}
}

func TestRunSendFailureDoesNotStopOthers(t *testing.T) {
	store := &memStore{}
	pub := &fakePublisher{failURL: map[string]bool{"https://bad": true}}
	fetcher := &fakeFetcher{articles: []domain.Article{
		{Title: "bad", URL: "https://bad"},
		{Title: "good", URL: "https://good"},
	}}

	res, err := newTestService(fetcher, store, pub, storage.PolicyHistory).Run(context.Background(), testSource)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Notified != 1 || res.Failed != 1 || len(pub.events) != 2 {
		t.Fatalf("unexpected result %+v events=%d", res, len(pub.events))
	}
	if !res.Persisted || !store.seen.Has("https://bad") || !store.seen.Has("https://good") {
		t.Fatalf("failed sends must still be persisted: %v", store.seen.URLs())
	}
}

func TestRunEmptyFetchEmptySeen(t *testing.T) {
	for _, policy := range []storage.Policy{storage.PolicyHistory, storage.PolicySnapshot} {
		t.Run(string(policy), func(t *testing.T) {
			store := &memStore{}
			pub := &fakePublisher{}
			res, err := newTestService(&fakeFetcher{}, store, pub, policy).Run(context.Background(), testSource)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(pub.events) != 0 {
				t.Fatalf("expected zero notifications")
			}
			if !res.Persisted || store.saves != 1 || store.seen.Len() != 0 {
				t.Fatalf("expected empty set persisted, res=%+v saves=%d", res, store.saves)
			}
		})
	}
}

func TestRunFetchErrorDoesNotPersist(t *testing.T) {
	store := &memStore{seen: domain.SeenSetFromURLs("https://a"), found: true}
	pub := &fakePublisher{}
	fetcher := &fakeFetcher{err: errors.New("timeout")}

	_, err := newTestService(fetcher, store, pub, storage.PolicySnapshot).Run(context.Background(), testSource)
	if err == nil {
		t.Fatalf("expected fetch error")
	}
	if store.saves != 0 || len(pub.events) != 0 {
		t.Fatalf("fetch failure must not notify or persist: saves=%d events=%d", store.saves, len(pub.events))
	}
	if got := store.seen.URLs(); !reflect.DeepEqual(got, []string{"https://a"}) {
		t.Fatalf("previous state changed: %v", got)
	}
}

func TestRunStoreErrors(t *testing.T) {
	fetcher := &fakeFetcher{articles: []domain.Article{{Title: "a", URL: "https://a"}}}

	loadFail := &memStore{loadErr: errors.New("corrupt")}
	if _, err := newTestService(fetcher, loadFail, &fakePublisher{}, storage.PolicyHistory).Run(context.Background(), testSource); err == nil {
		t.Fatalf("expected load error")
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetch must not run when the store cannot load")
	}

	saveFail := &memStore{saveErr: errors.New("disk full")}
	if _, err := newTestService(fetcher, saveFail, &fakePublisher{}, storage.PolicyHistory).Run(context.Background(), testSource); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestRunNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.Run(context.Background(), testSource); err == nil {
		t.Fatalf("expected error for nil service")
	}
}
