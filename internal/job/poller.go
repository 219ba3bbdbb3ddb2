package job

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"tredia-investing/internal/domain"
	"tredia-investing/internal/service"
	"tredia-investing/pkg/metrics"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const CategoryAll = "all"

// Categories lists the independently refreshed data categories.
var Categories = []string{service.CategoryQuotes, service.CategoryIndices, service.CategoryNews}

type DataSource interface {
	FetchQuotes(ctx context.Context, symbols []string) domain.Result[[]domain.Quote]
	FetchIndices(ctx context.Context) domain.Result[[]domain.IndexQuote]
	FetchNews(ctx context.Context) domain.Result[[]domain.NewsItem]
}

type slot[T any] struct {
	data       T
	provenance domain.Provenance
	updatedAt  time.Time
}

// CategoryStatus describes one state slot.
type CategoryStatus struct {
	Loading    bool              `json:"loading"`
	Provenance domain.Provenance `json:"provenance"`
	UpdatedAt  *time.Time        `json:"updatedAt,omitempty"`
}

// Snapshot is a point-in-time copy of the dashboard state. Metrics are
// computed from Quotes when the snapshot is taken.
type Snapshot struct {
	Quotes  []domain.Quote            `json:"quotes"`
	Indices []domain.IndexQuote       `json:"indices"`
	News    []domain.NewsItem         `json:"news"`
	Metrics domain.PortfolioMetrics   `json:"metrics"`
	Status  map[string]CategoryStatus `json:"status"`
}

// Poller keeps the dashboard state refreshed: one cycle at start, then one
// every poll interval. A refresh for a category that is already in flight is
// skipped, not queued.
type Poller struct {
	tracer       trace.Tracer
	source       DataSource
	holdings     []string
	pollInterval time.Duration
	metrics      *metrics.Metrics

	inFlight map[string]*atomic.Bool

	mu      sync.RWMutex
	quotes  slot[[]domain.Quote]
	indices slot[[]domain.IndexQuote]
	news    slot[[]domain.NewsItem]
}

func NewPoller(tracer trace.Tracer, source DataSource, holdings []string, pollIntervalSecs int, m *metrics.Metrics) *Poller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 300
	}
	p := &Poller{
		tracer:       tracer,
		source:       source,
		holdings:     append([]string(nil), holdings...),
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		metrics:      m,
		inFlight:     make(map[string]*atomic.Bool, len(Categories)),
	}
	for _, c := range Categories {
		p.inFlight[c] = &atomic.Bool{}
	}

	// Seed with placeholders so reads before the first fetch still render.
	seeded := make([]domain.Quote, 0, len(holdings))
	for _, symbol := range holdings {
		seeded = append(seeded, domain.FallbackQuote(domain.NormalizeSymbol(symbol)))
	}
	p.quotes = slot[[]domain.Quote]{data: seeded, provenance: domain.ProvenanceFallback}
	p.indices = slot[[]domain.IndexQuote]{data: domain.FallbackIndices(), provenance: domain.ProvenanceFallback}
	p.news = slot[[]domain.NewsItem]{data: domain.FallbackNews()[:3], provenance: domain.ProvenanceFallback}
	return p
}

// Schedule is the handle of a running poll loop.
type Schedule struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit. No state is written by the
// loop after Stop returns. Safe to call more than once.
func (s *Schedule) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed once the loop has exited.
func (s *Schedule) Done() <-chan struct{} {
	return s.done
}

// Start runs a refresh cycle immediately and then every poll interval until
// the returned schedule is stopped or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) *Schedule {
	ctx, cancel := context.WithCancel(ctx)
	s := &Schedule{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		log.Info("Dashboard poller starting", "interval", p.pollInterval, "holdings", p.holdings)

		p.RunCycle(ctx)

		ticker := time.NewTicker(p.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Dashboard poller stopped")
				return
			case <-ticker.C:
				p.RunCycle(ctx)
			}
		}
	}()

	return s
}

// RunCycle refreshes every category concurrently and waits for all of them.
func (p *Poller) RunCycle(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "poller.run-cycle")
	defer span.End()

	var g errgroup.Group
	g.Go(func() error { p.RefreshQuotes(ctx); return nil })
	g.Go(func() error { p.RefreshIndices(ctx); return nil })
	g.Go(func() error { p.RefreshNews(ctx); return nil })
	_ = g.Wait()
}

// Refresh runs one category, or all of them, on demand. It reports whether
// anything ran; false means every requested category was already in flight.
func (p *Poller) Refresh(ctx context.Context, category string) (bool, error) {
	switch category {
	case service.CategoryQuotes:
		return p.RefreshQuotes(ctx), nil
	case service.CategoryIndices:
		return p.RefreshIndices(ctx), nil
	case service.CategoryNews:
		return p.RefreshNews(ctx), nil
	case CategoryAll:
		var ran atomic.Bool
		var g errgroup.Group
		for _, fn := range []func(context.Context) bool{p.RefreshQuotes, p.RefreshIndices, p.RefreshNews} {
			g.Go(func() error {
				if fn(ctx) {
					ran.Store(true)
				}
				return nil
			})
		}
		_ = g.Wait()
		return ran.Load(), nil
	default:
		return false, fmt.Errorf("unknown category %q", category)
	}
}

func (p *Poller) RefreshQuotes(ctx context.Context) bool {
	return p.guarded(ctx, service.CategoryQuotes, func(ctx context.Context) {
		res := p.source.FetchQuotes(ctx, p.holdings)
		if len(res.Data) == 0 {
			return
		}
		p.mu.Lock()
		p.quotes = slot[[]domain.Quote]{data: res.Data, provenance: res.Provenance, updatedAt: res.FetchedAt}
		p.mu.Unlock()
	})
}

func (p *Poller) RefreshIndices(ctx context.Context) bool {
	return p.guarded(ctx, service.CategoryIndices, func(ctx context.Context) {
		res := p.source.FetchIndices(ctx)
		if len(res.Data) == 0 {
			return
		}
		p.mu.Lock()
		p.indices = slot[[]domain.IndexQuote]{data: res.Data, provenance: res.Provenance, updatedAt: res.FetchedAt}
		p.mu.Unlock()
	})
}

func (p *Poller) RefreshNews(ctx context.Context) bool {
	return p.guarded(ctx, service.CategoryNews, func(ctx context.Context) {
		res := p.source.FetchNews(ctx)
		if len(res.Data) == 0 {
			return
		}
		p.mu.Lock()
		p.news = slot[[]domain.NewsItem]{data: res.Data, provenance: res.Provenance, updatedAt: res.FetchedAt}
		p.mu.Unlock()
	})
}

// guarded runs fn unless a refresh of the same category is outstanding.
func (p *Poller) guarded(ctx context.Context, category string, fn func(context.Context)) bool {
	flag := p.inFlight[category]
	if !flag.CompareAndSwap(false, true) {
		p.metrics.ObserveRefreshSkipped(category)
		log.Debug("refresh already in flight, skipping", "category", category)
		return false
	}
	defer flag.Store(false)

	ctx, span := p.tracer.Start(ctx, "poller.refresh")
	defer span.End()
	span.SetAttributes(attribute.String("category", category))

	started := time.Now()
	fn(ctx)
	p.metrics.ObserveRefresh(category, started)
	return true
}

// Snapshot copies the current state and derives portfolio metrics from it.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	quotes := append([]domain.Quote(nil), p.quotes.data...)
	indices := append([]domain.IndexQuote(nil), p.indices.data...)
	news := append([]domain.NewsItem(nil), p.news.data...)
	status := map[string]CategoryStatus{
		service.CategoryQuotes:  p.status(service.CategoryQuotes, p.quotes.provenance, p.quotes.updatedAt),
		service.CategoryIndices: p.status(service.CategoryIndices, p.indices.provenance, p.indices.updatedAt),
		service.CategoryNews:    p.status(service.CategoryNews, p.news.provenance, p.news.updatedAt),
	}
	p.mu.RUnlock()

	return Snapshot{
		Quotes:  quotes,
		Indices: indices,
		News:    news,
		Metrics: service.ComputeMetrics(quotes),
		Status:  status,
	}
}

func (p *Poller) status(category string, provenance domain.Provenance, updatedAt time.Time) CategoryStatus {
	st := CategoryStatus{
		Loading:    p.inFlight[category].Load(),
		Provenance: provenance,
	}
	if !updatedAt.IsZero() {
		t := updatedAt
		st.UpdatedAt = &t
	}
	return st
}
