package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"tredia-investing/internal/cache"
	"tredia-investing/internal/domain"
	"tredia-investing/internal/provider"
	"tredia-investing/pkg/metrics"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	CategoryQuotes  = "quotes"
	CategoryIndices = "indices"
	CategoryNews    = "news"

	DefaultCacheTTL = 5 * time.Minute

	maxParallelFetches = 8
)

type ChartSource interface {
	FetchChart(ctx context.Context, symbol string) (*domain.ChartSnapshot, error)
}

type FeedSource interface {
	FetchFeed(ctx context.Context, feedURL string, maxItems int) ([]provider.ContentItem, error)
}

type AggregatorConfig struct {
	TTL          time.Duration
	NewsFeeds    []string
	NewsMaxItems int
	// Holdings drive news relevance scoring.
	Holdings []string
}

// Aggregator fetches quotes, indices and news, caching each logical request
// for the configured TTL. It never returns an error: failures resolve to a
// stale cached value or a built-in fallback, tagged with their provenance.
type Aggregator struct {
	tracer  trace.Tracer
	charts  ChartSource
	feeds   FeedSource
	store   cache.Store
	metrics *metrics.Metrics
	cfg     AggregatorConfig
	now     func() time.Time
	group   singleflight.Group
}

func NewAggregator(
	tracer trace.Tracer,
	charts ChartSource,
	feeds FeedSource,
	store cache.Store,
	m *metrics.Metrics,
	cfg AggregatorConfig,
) *Aggregator {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.NewsMaxItems <= 0 {
		cfg.NewsMaxItems = 10
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &Aggregator{
		tracer:  tracer,
		charts:  charts,
		feeds:   feeds,
		store:   store,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}
}

// FetchQuote returns the quote for symbol.
func (a *Aggregator) FetchQuote(ctx context.Context, symbol string) domain.Result[domain.Quote] {
	ctx, span := a.tracer.Start(ctx, "aggregator.fetch-quote")
	defer span.End()

	symbol = domain.NormalizeSymbol(symbol)
	span.SetAttributes(attribute.String("symbol", symbol))

	return cachedFetch(ctx, a, CategoryQuotes, domain.QuoteCacheKey(symbol),
		func(ctx context.Context) (domain.Quote, domain.Provenance, error) {
			snap, err := a.charts.FetchChart(ctx, symbol)
			if err != nil {
				return domain.Quote{}, "", err
			}
			return quoteFromChart(symbol, snap), domain.ProvenanceLive, nil
		},
		func() domain.Quote { return domain.FallbackQuote(symbol) },
	)
}

// FetchQuotes fetches every symbol concurrently. The combined provenance is
// the weakest of the individual results and FetchedAt is the oldest.
func (a *Aggregator) FetchQuotes(ctx context.Context, symbols []string) domain.Result[[]domain.Quote] {
	ctx, span := a.tracer.Start(ctx, "aggregator.fetch-quotes")
	defer span.End()
	span.SetAttributes(attribute.Int("symbols", len(symbols)))

	results := make([]domain.Result[domain.Quote], len(symbols))
	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, symbol := range symbols {
		g.Go(func() error {
			results[i] = a.FetchQuote(ctx, symbol)
			return nil
		})
	}
	_ = g.Wait()

	out := domain.Result[[]domain.Quote]{Data: make([]domain.Quote, 0, len(results))}
	provenances := make([]domain.Provenance, 0, len(results))
	for _, r := range results {
		out.Data = append(out.Data, r.Data)
		provenances = append(provenances, r.Provenance)
		if out.FetchedAt.IsZero() || r.FetchedAt.Before(out.FetchedAt) {
			out.FetchedAt = r.FetchedAt
		}
	}
	out.Provenance = domain.Weakest(provenances...)
	if out.FetchedAt.IsZero() {
		out.FetchedAt = a.now()
	}
	return out
}

// FetchIndices returns the tracked market indices in a fixed order. An index
// whose chart cannot be read is replaced by its fallback row.
func (a *Aggregator) FetchIndices(ctx context.Context) domain.Result[[]domain.IndexQuote] {
	ctx, span := a.tracer.Start(ctx, "aggregator.fetch-indices")
	defer span.End()

	return cachedFetch(ctx, a, CategoryIndices, domain.IndicesCacheKey,
		func(ctx context.Context) ([]domain.IndexQuote, domain.Provenance, error) {
			rows := make([]domain.IndexQuote, len(domain.TrackedIndices))
			provenances := make([]domain.Provenance, len(domain.TrackedIndices))
			errs := make([]error, len(domain.TrackedIndices))

			var g errgroup.Group
			for i, idx := range domain.TrackedIndices {
				g.Go(func() error {
					snap, err := a.charts.FetchChart(ctx, idx.Symbol)
					if err != nil {
						log.Warn("index fetch failed, using fallback row", "symbol", idx.Symbol, "err", err)
						rows[i] = domain.FallbackIndex(idx)
						provenances[i] = domain.ProvenanceFallback
						errs[i] = err
						return nil
					}
					rows[i] = indexFromChart(idx, snap)
					provenances[i] = domain.ProvenanceLive
					return nil
				})
			}
			_ = g.Wait()

			failed := 0
			for _, err := range errs {
				if err != nil {
					failed++
				}
			}
			if failed == len(errs) {
				return nil, "", fmt.Errorf("all %d index fetches failed: %w", failed, errs[0])
			}
			return rows, domain.Weakest(provenances...), nil
		},
		domain.FallbackIndices,
	)
}

// FetchNews returns headlines from the configured feeds, or the built-in
// list when no feed is configured or none could be read.
func (a *Aggregator) FetchNews(ctx context.Context) domain.Result[[]domain.NewsItem] {
	ctx, span := a.tracer.Start(ctx, "aggregator.fetch-news")
	defer span.End()

	return cachedFetch(ctx, a, CategoryNews, domain.NewsCacheKey,
		func(ctx context.Context) ([]domain.NewsItem, domain.Provenance, error) {
			if len(a.cfg.NewsFeeds) == 0 || a.feeds == nil {
				return domain.FallbackNews(), domain.ProvenanceFallback, nil
			}
			items, err := a.collectFeeds(ctx)
			if err != nil {
				return nil, "", err
			}
			return items, domain.ProvenanceLive, nil
		},
		domain.FallbackNews,
	)
}

func (a *Aggregator) collectFeeds(ctx context.Context) ([]domain.NewsItem, error) {
	perFeed := make([][]provider.ContentItem, len(a.cfg.NewsFeeds))
	errs := make([]error, len(a.cfg.NewsFeeds))

	var g errgroup.Group
	for i, feedURL := range a.cfg.NewsFeeds {
		g.Go(func() error {
			items, err := a.feeds.FetchFeed(ctx, feedURL, a.cfg.NewsMaxItems)
			if err != nil {
				log.Warn("news feed fetch failed", "feed", feedURL, "err", err)
				errs[i] = err
				return nil
			}
			perFeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var merged []provider.ContentItem
	var firstErr error
	for i := range perFeed {
		merged = append(merged, perFeed[i]...)
		if firstErr == nil && errs[i] != nil {
			firstErr = errs[i]
		}
	}
	if len(merged) == 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("no news feed could be read: %w", firstErr)
		}
		return nil, fmt.Errorf("news feeds returned no items")
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if len(merged) > a.cfg.NewsMaxItems {
		merged = merged[:a.cfg.NewsMaxItems]
	}

	now := a.now()
	out := make([]domain.NewsItem, 0, len(merged))
	for _, item := range merged {
		out = append(out, newsFromContent(item, a.cfg.Holdings, now))
	}
	return out, nil
}

type fetchFunc[T any] func(ctx context.Context) (T, domain.Provenance, error)

// cachedFetch serves a valid cache entry unchanged. On a miss it calls fetch
// once per key at a time; on failure it serves the expired entry as stale when
// one holds real data, and fallback() otherwise. The outcome is always cached.
// The shared fetch ignores caller cancellation; provider client timeouts bound it.
func cachedFetch[T any](
	ctx context.Context,
	a *Aggregator,
	category, key string,
	fetch fetchFunc[T],
	fallback func() T,
) domain.Result[T] {
	entry := a.lookup(ctx, key)
	if entry != nil && entry.Valid(a.now(), a.cfg.TTL) {
		var data T
		err := json.Unmarshal(entry.Payload, &data)
		if err == nil {
			a.metrics.ObserveCacheLookup("hit")
			log.Debug("Using cached data", "key", key)
			return domain.Result[T]{Data: data, Provenance: entry.Provenance, FetchedAt: entry.FetchedAt}
		}
		log.Warn("discarding undecodable cache entry", "key", key, "err", err)
		entry = nil
	}
	a.metrics.ObserveCacheLookup("miss")

	v, _, _ := a.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		data, provenance, err := fetch(ctx)
		if err != nil {
			data, provenance = staleOrFallback(entry, fallback)
			log.Warn("live fetch failed", "key", key, "provenance", provenance, "err", err)
		}
		res := domain.Result[T]{Data: data, Provenance: provenance, FetchedAt: a.now()}
		a.save(ctx, key, res.Data, res.Provenance, res.FetchedAt)
		a.metrics.ObserveFetch(category, string(provenance))
		return res, nil
	})
	return v.(domain.Result[T])
}

// staleOrFallback prefers an expired entry that holds real data over the
// built-in fallback.
func staleOrFallback[T any](entry *cache.Entry, fallback func() T) (T, domain.Provenance) {
	if entry != nil && (entry.Provenance == domain.ProvenanceLive || entry.Provenance == domain.ProvenanceStale) {
		var data T
		if err := json.Unmarshal(entry.Payload, &data); err == nil {
			return data, domain.ProvenanceStale
		}
	}
	return fallback(), domain.ProvenanceFallback
}

func (a *Aggregator) lookup(ctx context.Context, key string) *cache.Entry {
	entry, err := a.store.Get(ctx, key)
	if err != nil {
		a.metrics.ObserveCacheLookup("error")
		log.Warn("cache read error", "key", key, "err", err)
		return nil
	}
	return entry
}

func (a *Aggregator) save(ctx context.Context, key string, data any, provenance domain.Provenance, fetchedAt time.Time) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("cache encode error", "key", key, "err", err)
		return
	}
	entry := cache.Entry{Payload: payload, FetchedAt: fetchedAt, Provenance: provenance}
	if err := a.store.Set(ctx, key, entry); err != nil {
		log.Warn("cache write error", "key", key, "err", err)
	}
}

func quoteFromChart(symbol string, snap *domain.ChartSnapshot) domain.Quote {
	change := snap.Price - snap.PreviousClose
	return domain.Quote{
		Symbol:        symbol,
		Price:         snap.Price,
		Change:        change,
		ChangePercent: change / snap.PreviousClose * 100,
		Volume:        snap.Volume,
	}
}

func indexFromChart(idx domain.MarketIndex, snap *domain.ChartSnapshot) domain.IndexQuote {
	change := snap.Price - snap.PreviousClose
	return domain.IndexQuote{
		Symbol:        idx.Symbol,
		Name:          idx.Name,
		Price:         snap.Price,
		Change:        change,
		ChangePercent: change / snap.PreviousClose * 100,
	}
}
