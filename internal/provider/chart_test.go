package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace/noop"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

const validChart = `{"chart":{"result":[{"meta":{"regularMarketPrice":110,"previousClose":100},"indicators":{"quote":[{"volume":[1000,2500]}]}}],"error":null}}`

func newTestChartProvider(relay string, rt roundTripFunc) *ChartProvider {
	p := NewChartProvider(noop.NewTracerProvider().Tracer("test"), relay, "https://upstream.example/v8/finance/chart", time.Second, 100)
	p.client = &http.Client{Transport: rt}
	return p
}

func TestChartURLThroughRelay(t *testing.T) {
	p := newTestChartProvider("https://relay.example/raw", nil)

	got := p.ChartURL("AAPL")
	parsed, err := url.Parse(got)
	if err != nil {
		t.Fatalf("invalid url %q: %v", got, err)
	}
	if parsed.Host != "relay.example" || parsed.Path != "/raw" {
		t.Fatalf("expected relay host, got %s", got)
	}
	inner := parsed.Query().Get("url")
	if inner != "https://upstream.example/v8/finance/chart/AAPL?interval=1d&range=1d" {
		t.Fatalf("unexpected upstream url %q", inner)
	}
}

func TestChartURLDirect(t *testing.T) {
	p := newTestChartProvider("", nil)
	if got := p.ChartURL("^GSPC"); got != "https://upstream.example/v8/finance/chart/%5EGSPC?interval=1d&range=1d" {
		t.Fatalf("unexpected direct url %q", got)
	}

	p = newTestChartProvider("https://relay.example/get?format=raw", nil)
	if got := p.ChartURL("MSFT"); !strings.HasPrefix(got, "https://relay.example/get?format=raw&url=") {
		t.Fatalf("expected relay query to be extended, got %q", got)
	}
}

func TestChartProviderFetchChart(t *testing.T) {
	t.Parallel()

	p := newTestChartProvider("https://relay.example/raw", func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "relay.example" {
			t.Errorf("expected request through relay, got %s", req.URL)
		}
		return jsonResponse(http.StatusOK, validChart), nil
	})

	snap, err := p.FetchChart(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Symbol != "AAPL" || snap.Price != 110 || snap.PreviousClose != 100 || snap.Volume != 2500 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestChartProviderHTTPError(t *testing.T) {
	t.Parallel()

	p := newTestChartProvider("", func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, "slow down"), nil
	})
	_, err := p.FetchChart(context.Background(), "AAPL")
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}

	p = newTestChartProvider("", func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: timeout")
	})
	if _, err := p.FetchChart(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestParseChartMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":     `{"chart":`,
		"empty result":     `{"chart":{"result":[]}}`,
		"null result":      `{"chart":{"result":null,"error":{"code":"Not Found"}}}`,
		"missing meta":     `{"chart":{"result":[{"indicators":{"quote":[{"volume":[1]}]}}]}}`,
		"string price":     `{"chart":{"result":[{"meta":{"regularMarketPrice":"1","previousClose":1},"indicators":{"quote":[{"volume":[1]}]}}]}}`,
		"zero prev close":  `{"chart":{"result":[{"meta":{"regularMarketPrice":1,"previousClose":0},"indicators":{"quote":[{"volume":[1]}]}}]}}`,
		"missing quote":    `{"chart":{"result":[{"meta":{"regularMarketPrice":1,"previousClose":1},"indicators":{"quote":[]}}]}}`,
		"missing volume":   `{"chart":{"result":[{"meta":{"regularMarketPrice":1,"previousClose":1},"indicators":{"quote":[{}]}}]}}`,
	}
	for name, body := range cases {
		if _, err := parseChart("AAPL", []byte(body)); !errors.Is(err, ErrMalformedChart) {
			t.Fatalf("%s: expected ErrMalformedChart, got %v", name, err)
		}
	}
}

func TestParseChartVolumeEdgeCases(t *testing.T) {
	snap, err := parseChart("AAPL", []byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":5,"previousClose":4},"indicators":{"quote":[{"volume":[10,null]}]}}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Volume != 0 {
		t.Fatalf("null trailing volume should read as zero, got %d", snap.Volume)
	}

	snap, err = parseChart("AAPL", []byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":5,"previousClose":4},"indicators":{"quote":[{"volume":[]}]}}]}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Volume != 0 {
		t.Fatalf("empty volume should read as zero, got %d", snap.Volume)
	}
}
