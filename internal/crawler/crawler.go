package crawler

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/khobor-watch/internal/domain"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/Adda-Baaj/khobor-watch/internal/storage"
	"github.com/Adda-Baaj/khobor-watch/pkg/publishers"
	"github.com/Adda-Baaj/khobor-watch/pkg/sources"
)

// Result summarizes one pass.
type Result struct {
	Fetched   int  // records returned by the fetcher
	Filtered  int  // records left after the recency filter
	New       int  // records not in the seen-set
	Notified  int  // new records every sink accepted
	Failed    int  // new records at least one sink rejected
	Persisted bool // whether the store was written
}

// Options tunes a Service.
type Options struct {
	Policy    storage.Policy
	Recency   *RecencyFilter
	Formatter Formatter
	Logger    logger.Logger
}

// Service runs the fetch, diff, notify and persist pass for one source.
type Service struct {
	registry  sources.FetcherRegistry
	store     storage.Store
	publisher EventPublisher
	policy    storage.Policy
	recency   *RecencyFilter
	formatter Formatter
	log       logger.Logger
}

// NewService wires a pass over the given collaborators.
func NewService(reg sources.FetcherRegistry, store storage.Store, pub EventPublisher, opts Options) *Service {
	policy := opts.Policy
	if policy == "" {
		policy = storage.PolicyHistory
	}
	return &Service{
		registry:  reg,
		store:     store,
		publisher: pub,
		policy:    policy,
		recency:   opts.Recency,
		formatter: opts.Formatter,
		log:       logger.Ensure(opts.Logger),
	}
}

// Run executes one pass. A fetch or store error aborts the pass without
// persisting; send failures are logged and the pass continues.
func (s *Service) Run(ctx context.Context, src sources.Source) (Result, error) {
	var res Result
	if s == nil || s.registry == nil || s.store == nil || s.publisher == nil {
		return res, fmt.Errorf("crawler service is not initialized")
	}

	seen, found, err := s.store.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load seen set: %w", err)
	}

	fetcher, err := s.registry.FetcherFor(src)
	if err != nil {
		return res, fmt.Errorf("resolve fetcher for source %s: %w", src.ID, err)
	}
	articles, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return res, fmt.Errorf("fetch source %s: %w", src.ID, err)
	}
	res.Fetched = len(articles)

	articles = s.recency.Apply(articles)
	res.Filtered = len(articles)

	fresh := NewArticles(articles, seen)
	res.New = len(fresh)

	for _, a := range fresh {
		if s.notify(ctx, src, a) {
			res.Notified++
		} else {
			res.Failed++
		}
	}

	if len(fresh) == 0 {
		s.log.InfoObj("no new articles", "crawl_result", map[string]any{
			"source_id": src.ID,
			"fetched":   res.Fetched,
			"filtered":  res.Filtered,
		})
	}

	next, save := s.policy.Next(seen, found, articles)
	if save {
		if err := s.store.Save(ctx, next); err != nil {
			return res, fmt.Errorf("save seen set: %w", err)
		}
		res.Persisted = true
	}

	s.log.DebugObj("crawl pass completed", "crawl_summary", map[string]any{
		"source_id": src.ID,
		"policy":    string(s.policy),
		"new":       res.New,
		"notified":  res.Notified,
		"failed":    res.Failed,
		"persisted": res.Persisted,
		"seen":      next.Len(),
	})
	return res, nil
}

// notify publishes one article and reports whether every sink accepted it.
func (s *Service) notify(ctx context.Context, src sources.Source, a domain.Article) bool {
	evt := publishers.NewEvent(src.ID, s.formatter.Format(a), a)
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.ErrorObj("notification failed", "notify_error", map[string]any{
			"source_id": src.ID,
			"title":     a.Title,
			"url":       a.URL,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return false
	}
	s.log.InfoObj("new article notified", "notify_result", map[string]any{
		"source_id": src.ID,
		"title":     a.Title,
		"url":       a.URL,
	})
	return true
}
