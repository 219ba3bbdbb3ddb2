package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"tredia-investing/internal/domain"
	"tredia-investing/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

func TestNewPollerDefaults(t *testing.T) {
	poller := NewPoller(testTracer, &stubSource{}, []string{"aapl", "NVDA"}, 2, nil)
	if poller.pollInterval != 2*time.Second {
		t.Fatalf("expected 2s interval, got %v", poller.pollInterval)
	}

	poller = NewPoller(testTracer, &stubSource{}, nil, 0, nil)
	if poller.pollInterval != 5*time.Minute {
		t.Fatalf("expected 5 minute default, got %v", poller.pollInterval)
	}
}

func TestSnapshotSeededWithFallbacks(t *testing.T) {
	poller := NewPoller(testTracer, &stubSource{}, []string{"aapl", "NVDA"}, 1, nil)

	snap := poller.Snapshot()
	if len(snap.Quotes) != 2 || snap.Quotes[0].Price != 198.75 || snap.Quotes[1].Price != 100 {
		t.Fatalf("unexpected seeded quotes: %+v", snap.Quotes)
	}
	if len(snap.Indices) != 3 || len(snap.News) != 3 {
		t.Fatalf("unexpected seeded indices/news: %d %d", len(snap.Indices), len(snap.News))
	}
	if snap.Metrics.TotalValue != 298.75 {
		t.Fatalf("expected metrics derived from seeded quotes, got %+v", snap.Metrics)
	}
	for _, c := range Categories {
		st := snap.Status[c]
		if st.Provenance != domain.ProvenanceFallback || st.Loading || st.UpdatedAt != nil {
			t.Fatalf("%s: unexpected seeded status %+v", c, st)
		}
	}
}

func TestRefreshUpdatesSlots(t *testing.T) {
	fetched := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	src := &stubSource{
		quotes:    []domain.Quote{{Symbol: "AAPL", Price: 10, Change: 1}, {Symbol: "MSFT", Price: 20, Change: 1}},
		indices:   []domain.IndexQuote{{Symbol: "^GSPC", Name: "S&P 500", Price: 5000}},
		news:      []domain.NewsItem{{Title: "Live headline", Impact: domain.ImpactLow}},
		fetchedAt: fetched,
	}
	poller := NewPoller(testTracer, src, []string{"AAPL", "MSFT"}, 1, nil)

	poller.RunCycle(context.Background())

	snap := poller.Snapshot()
	if len(snap.Quotes) != 2 || snap.Quotes[1].Price != 20 {
		t.Fatalf("unexpected quotes: %+v", snap.Quotes)
	}
	if snap.Metrics.TotalValue != 30 || snap.Metrics.TotalChange != 2 {
		t.Fatalf("metrics should follow refreshed quotes, got %+v", snap.Metrics)
	}
	if len(snap.Indices) != 1 || snap.News[0].Title != "Live headline" {
		t.Fatalf("unexpected indices/news: %+v %+v", snap.Indices, snap.News)
	}
	st := snap.Status["quotes"]
	if st.Provenance != domain.ProvenanceLive || st.UpdatedAt == nil || !st.UpdatedAt.Equal(fetched) {
		t.Fatalf("unexpected quotes status: %+v", st)
	}
	if got := src.symbols(); len(got) != 2 || got[0] != "AAPL" {
		t.Fatalf("expected holdings to be requested, got %v", got)
	}
}

func TestRefreshKeepsSlotOnEmptyResult(t *testing.T) {
	poller := NewPoller(testTracer, &stubSource{}, []string{"AAPL"}, 1, nil)

	poller.RunCycle(context.Background())

	snap := poller.Snapshot()
	if len(snap.Quotes) != 1 || snap.Quotes[0].Symbol != "AAPL" || len(snap.News) != 3 {
		t.Fatalf("empty results should not replace seeded state: %+v", snap)
	}
}

func TestInFlightGuardSkipsOverlap(t *testing.T) {
	release := make(chan struct{})
	src := &stubSource{
		quotes: []domain.Quote{{Symbol: "AAPL", Price: 1}},
		gate:   release,
	}
	m := metrics.New()
	poller := NewPoller(testTracer, src, []string{"AAPL"}, 1, m)

	first := make(chan bool)
	go func() { first <- poller.RefreshQuotes(context.Background()) }()

	eventually(t, func() bool { return src.quoteCallCount() == 1 })
	if !poller.Snapshot().Status["quotes"].Loading {
		t.Fatal("expected quotes to be marked loading")
	}

	if poller.RefreshQuotes(context.Background()) {
		t.Fatal("overlapping refresh should be skipped")
	}
	if ran, err := poller.Refresh(context.Background(), "quotes"); ran || err != nil {
		t.Fatalf("manual refresh should be skipped too, got %v %v", ran, err)
	}

	close(release)
	if !<-first {
		t.Fatal("first refresh should have run")
	}
	if src.quoteCallCount() != 1 {
		t.Fatalf("expected exactly one outstanding request, got %d", src.quoteCallCount())
	}
	if got := testutil.ToFloat64(m.RefreshSkippedTotal.WithLabelValues("quotes")); got != 2 {
		t.Fatalf("expected 2 skipped refreshes, got %v", got)
	}

	if !poller.RefreshQuotes(context.Background()) {
		t.Fatal("refresh should run again once the first completed")
	}
	if src.quoteCallCount() != 2 {
		t.Fatalf("expected second fetch, got %d", src.quoteCallCount())
	}
}

func TestGuardIsPerCategory(t *testing.T) {
	release := make(chan struct{})
	src := &stubSource{gate: release}
	poller := NewPoller(testTracer, src, []string{"AAPL"}, 1, nil)

	done := make(chan struct{})
	go func() {
		poller.RefreshQuotes(context.Background())
		close(done)
	}()
	eventually(t, func() bool { return src.quoteCallCount() == 1 })

	// indices and news do not wait on the quotes gate
	src.mu.Lock()
	src.gate = nil
	src.mu.Unlock()
	if !poller.RefreshIndices(context.Background()) || !poller.RefreshNews(context.Background()) {
		t.Fatal("other categories should not be blocked by an outstanding quotes refresh")
	}

	close(release)
	<-done
}

func TestRefreshCategories(t *testing.T) {
	src := &stubSource{}
	poller := NewPoller(testTracer, src, []string{"AAPL"}, 1, nil)

	for _, c := range []string{"quotes", "indices", "news", "all"} {
		ran, err := poller.Refresh(context.Background(), c)
		if err != nil || !ran {
			t.Fatalf("%s: expected refresh to run, got %v %v", c, ran, err)
		}
	}
	if _, err := poller.Refresh(context.Background(), "crypto"); err == nil {
		t.Fatal("expected error for unknown category")
	}
	if src.quoteCallCount() != 2 || src.indexCallCount() != 2 || src.newsCallCount() != 2 {
		t.Fatalf("unexpected call counts: %d %d %d", src.quoteCallCount(), src.indexCallCount(), src.newsCallCount())
	}
}

func TestPollerStartAndStop(t *testing.T) {
	src := &stubSource{}
	poller := NewPoller(testTracer, src, []string{"AAPL"}, 1, nil)
	poller.pollInterval = 10 * time.Millisecond

	schedule := poller.Start(context.Background())
	eventually(t, func() bool {
		return src.quoteCallCount() >= 2 && src.indexCallCount() >= 2 && src.newsCallCount() >= 2
	})
	schedule.Stop()
	schedule.Stop()

	select {
	case <-schedule.Done():
	default:
		t.Fatal("expected loop to have exited after Stop")
	}

	calls := src.quoteCallCount()
	time.Sleep(30 * time.Millisecond)
	if src.quoteCallCount() != calls {
		t.Fatalf("no refresh should run after Stop, got %d then %d", calls, src.quoteCallCount())
	}
}

func TestPollerStopsWithParentContext(t *testing.T) {
	poller := NewPoller(testTracer, &stubSource{}, []string{"AAPL"}, 60, nil)

	ctx, cancel := context.WithCancel(context.Background())
	schedule := poller.Start(ctx)
	cancel()

	select {
	case <-schedule.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after parent cancellation")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

type stubSource struct {
	mu        sync.Mutex
	quotes    []domain.Quote
	indices   []domain.IndexQuote
	news      []domain.NewsItem
	fetchedAt time.Time
	gate      chan struct{}

	quoteCalls  int
	indexCalls  int
	newsCalls   int
	lastSymbols []string
}

func (s *stubSource) FetchQuotes(ctx context.Context, symbols []string) domain.Result[[]domain.Quote] {
	s.mu.Lock()
	s.quoteCalls++
	s.lastSymbols = append([]string(nil), symbols...)
	gate := s.gate
	data := s.quotes
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return domain.Result[[]domain.Quote]{Data: data, Provenance: domain.ProvenanceLive, FetchedAt: s.fetchedAt}
}

func (s *stubSource) FetchIndices(ctx context.Context) domain.Result[[]domain.IndexQuote] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexCalls++
	return domain.Result[[]domain.IndexQuote]{Data: s.indices, Provenance: domain.ProvenanceLive, FetchedAt: s.fetchedAt}
}

func (s *stubSource) FetchNews(ctx context.Context) domain.Result[[]domain.NewsItem] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newsCalls++
	return domain.Result[[]domain.NewsItem]{Data: s.news, Provenance: domain.ProvenanceLive, FetchedAt: s.fetchedAt}
}

func (s *stubSource) quoteCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quoteCalls
}

func (s *stubSource) indexCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexCalls
}

func (s *stubSource) newsCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newsCalls
}

func (s *stubSource) symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSymbols
}
