package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCounters(t *testing.T) {
	m := New()
	m.ObserveFetch("quotes", "live")
	m.ObserveFetch("quotes", "live")
	m.ObserveFetch("quotes", "fallback")
	m.ObserveCacheLookup("hit")
	m.ObserveRefreshSkipped("news")
	m.ObserveRefresh("news", time.Now())

	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("quotes", "live")); got != 2 {
		t.Fatalf("expected 2 live fetches, got %v", got)
	}
	if got := testutil.ToFloat64(m.RefreshSkippedTotal.WithLabelValues("news")); got != 1 {
		t.Fatalf("expected 1 skipped refresh, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("quotes", "live")
	m.ObserveCacheLookup("miss")
	m.ObserveRefreshSkipped("quotes")
	m.ObserveRefresh("quotes", time.Now())
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveCacheLookup("miss")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `tredia_cache_lookups_total{result="miss"} 1`) {
		t.Fatalf("expected cache counter in output, got %s", w.Body.String())
	}
}
