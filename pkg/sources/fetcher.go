package sources

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Adda-Baaj/khobor-watch/pkg/httpclient"
)

// fetcherRegistry implements FetcherRegistry keyed by fetch strategy.
type fetcherRegistry struct {
	fetchersByType map[string]Fetcher
	mu             sync.RWMutex
}

// NewFetcherRegistry builds a registry for the provided fetchers keyed by their ID.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{
		fetchersByType: make(map[string]Fetcher, len(fetchers)),
	}
	for _, f := range fetchers {
		reg.register(f)
	}
	return reg
}

func (r *fetcherRegistry) register(f Fetcher) {
	if f == nil {
		return
	}
	key := strings.ToLower(strings.TrimSpace(f.ID()))
	if key == "" {
		return
	}

	r.mu.Lock()
	r.fetchersByType[key] = f
	r.mu.Unlock()
}

// FetcherFor selects the fetcher for the given source based on its type.
func (r *fetcherRegistry) FetcherFor(src Source) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(src.Type))
	if f, ok := r.fetchersByType[key]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("no fetcher registered for source %q (type %q)", src.ID, src.Type)
}

// DefaultHTTPClient returns a tuned client for source fetchers.
func DefaultHTTPClient(timeout time.Duration) HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return httpclient.NewRestyClient(timeout)
}

// DefaultFetcherRegistry wires up the known fetch strategies.
func DefaultFetcherRegistry(client HTTPClient, renderTimeout time.Duration, log Logger) FetcherRegistry {
	if client == nil {
		client = DefaultHTTPClient(renderTimeout)
	}

	return NewFetcherRegistry(
		NewStaticFetcher(client, log),
		NewRenderedFetcher(renderTimeout, log),
		NewFeedFetcher(client, log),
		NewSitemapFetcher(client, log),
	)
}
