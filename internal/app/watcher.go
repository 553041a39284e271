package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/khobor-watch/internal/config"
	"github.com/Adda-Baaj/khobor-watch/internal/crawler"
	"github.com/Adda-Baaj/khobor-watch/internal/logger"
	"github.com/Adda-Baaj/khobor-watch/internal/storage"
	"github.com/Adda-Baaj/khobor-watch/pkg/publishers"
	"github.com/Adda-Baaj/khobor-watch/pkg/sources"
)

// Watcher runs one watch pass: it owns the source definition, the seen-set
// store and the publisher fanout for the lifetime of the process.
type Watcher struct {
	cfg     *config.Config
	source  sources.Source
	fanout  *publishers.Fanout
	service *crawler.Service
	store   storage.Store
	log     logger.Logger
}

// Option overrides a collaborator, mainly for tests.
type Option func(*options)

type options struct {
	registry sources.FetcherRegistry
	store    storage.Store
	now      func() time.Time
}

// WithFetcherRegistry replaces the default fetch strategies.
func WithFetcherRegistry(reg sources.FetcherRegistry) Option {
	return func(o *options) { o.registry = reg }
}

// WithStore replaces the configured storage backend.
func WithStore(store storage.Store) Option {
	return func(o *options) { o.store = store }
}

// WithClock sets the clock used by the recency filter.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewWatcher builds a watcher from cfg. The webhook is checked before anything
// else is built, so a missing endpoint never reaches the network or the store.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return nil, config.ErrMissingWebhook
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := storage.ParsePolicy(cfg.SeenPolicy)
	if err != nil {
		return nil, err
	}

	src, err := loadSource(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("source loaded", "source_meta", map[string]any{
		"id":       src.ID,
		"url":      src.URL,
		"strategy": src.Type,
	})

	pubCfgs, err := publisherConfigs(cfg)
	if err != nil {
		return nil, err
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	summaries := make([]map[string]string, 0, len(pubCfgs))
	for _, pc := range pubCfgs {
		summaries = append(summaries, map[string]string{"id": pc.ID, "type": pc.Type})
	}
	log.InfoObj("publishers configured", "publishers_meta", map[string]any{
		"count":      fanout.Size(),
		"publishers": summaries,
	})

	registry := o.registry
	if registry == nil {
		registry = sources.DefaultFetcherRegistry(sources.DefaultHTTPClient(cfg.FetchTimeout), cfg.FetchTimeout, log)
	}

	recency := crawler.NewRecencyFilter(cfg.RecencyWindow, cfg.Location, cfg.PublishedLayout, log)
	if recency != nil && o.now != nil {
		recency.Now = o.now
	}

	store := o.store
	if store == nil {
		store, err = storage.NewStore(cfg.StorageType, storage.Options{
			Policy:    policy,
			StatePath: cfg.StatePath,
			BoltPath:  cfg.BBoltPath,
			RedisAddr: cfg.RedisAddr,
			RedisKey:  cfg.RedisKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":   cfg.StorageType,
		"policy": string(policy),
	})

	service := crawler.NewService(registry, store, fanout, crawler.Options{
		Policy:  policy,
		Recency: recency,
		Formatter: crawler.Formatter{
			Header:     cfg.MessageHeader,
			TitleWidth: cfg.MessageTitleWidth,
		},
		Logger: log,
	})

	return &Watcher{
		cfg:     cfg,
		source:  src,
		fanout:  fanout,
		service: service,
		store:   store,
		log:     log,
	}, nil
}

// loadSource returns the built-in source, overridden by SOURCE_FILE when set.
func loadSource(cfg *config.Config) (sources.Source, error) {
	src := sources.Default(cfg.SourceURL, cfg.FetchStrategy)
	if strings.TrimSpace(cfg.SourceFile) != "" {
		loaded, err := sources.LoadSource(cfg.SourceFile, src)
		if err != nil {
			return sources.Source{}, fmt.Errorf("load source file: %w", err)
		}
		return loaded, nil
	}
	if err := sources.Validate(src); err != nil {
		return sources.Source{}, fmt.Errorf("invalid source: %w", err)
	}
	return src, nil
}

// publisherConfigs puts the chat webhook first, followed by enabled entries of PUBLISHERS_FILE.
func publisherConfigs(cfg *config.Config) ([]publishers.PublisherConfig, error) {
	cfgs := []publishers.PublisherConfig{
		publishers.WebhookConfig(cfg.WebhookURL, int(cfg.WebhookTimeoutSeconds)),
	}
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		return cfgs, nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	for _, pc := range reg.Enabled() {
		if pc.ID == publishers.WebhookPublisherID {
			return nil, fmt.Errorf("publisher id %q is reserved for the chat webhook", pc.ID)
		}
		cfgs = append(cfgs, pc)
	}
	return cfgs, nil
}

// Run performs one pass and closes the store.
func (w *Watcher) Run(ctx context.Context) (crawler.Result, error) {
	if w == nil || w.service == nil {
		return crawler.Result{}, fmt.Errorf("watcher is not initialized")
	}
	defer w.closeStore()

	start := time.Now()
	w.log.InfoObj("watch pass started", "watch_meta", map[string]any{
		"source_id":        w.source.ID,
		"publishers_count": w.fanout.Size(),
		"started_at":       start.UTC(),
	})

	res, err := w.service.Run(ctx, w.source)
	if err != nil {
		return res, err
	}

	w.log.InfoObj("watch pass completed", "watch_meta", map[string]any{
		"source_id":  w.source.ID,
		"fetched":    res.Fetched,
		"new":        res.New,
		"notified":   res.Notified,
		"failed":     res.Failed,
		"persisted":  res.Persisted,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return res, nil
}

// closeStore closes the storage backend, logging any error.
func (w *Watcher) closeStore() {
	if w.store == nil {
		return
	}
	if err := w.store.Close(); err != nil {
		w.log.ErrorObj("storage close failed", "error", err)
	}
}
