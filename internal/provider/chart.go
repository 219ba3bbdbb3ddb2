package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tredia-investing/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrMalformedChart marks an upstream response that is missing required fields.
var ErrMalformedChart = errors.New("malformed chart payload")

// ChartProvider reads the latest quote for a symbol from a chart endpoint,
// optionally through a relay that takes the upstream URL as its url parameter.
type ChartProvider struct {
	client      *http.Client
	relayURL    string
	upstreamURL string
	tracer      trace.Tracer
	limiter     *RateLimiter
}

// NewChartProvider creates a provider with a fixed request deadline and a
// limit of ratePerSec upstream calls per second.
func NewChartProvider(tracer trace.Tracer, relayURL, upstreamURL string, timeout time.Duration, ratePerSec int) *ChartProvider {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &ChartProvider{
		client:      &http.Client{Timeout: timeout},
		relayURL:    relayURL,
		upstreamURL: strings.TrimRight(upstreamURL, "/"),
		tracer:      tracer,
		limiter:     NewRateLimiter(ratePerSec, time.Second/time.Duration(ratePerSec)),
	}
}

// ChartURL returns the URL requested for symbol.
func (p *ChartProvider) ChartURL(symbol string) string {
	upstream := fmt.Sprintf("%s/%s?interval=1d&range=1d", p.upstreamURL, url.PathEscape(symbol))
	if p.relayURL == "" {
		return upstream
	}
	sep := "?"
	if strings.Contains(p.relayURL, "?") {
		sep = "&"
	}
	return p.relayURL + sep + "url=" + url.QueryEscape(upstream)
}

// FetchChart returns the current price, previous close and latest volume for symbol.
func (p *ChartProvider) FetchChart(ctx context.Context, symbol string) (*domain.ChartSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "chart.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	body, err := p.doRequest(ctx, p.ChartURL(symbol))
	if err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}

	snap, err := parseChart(symbol, body)
	if err != nil {
		return nil, fmt.Errorf("parse chart for %s: %w", symbol, err)
	}
	return snap, nil
}

func (p *ChartProvider) doRequest(ctx context.Context, target string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// parseChart expects chart.result[0].meta.{regularMarketPrice,previousClose}
// and chart.result[0].indicators.quote[0].volume[]. Anything else is malformed.
func parseChart(symbol string, body []byte) (*domain.ChartSnapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedChart)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.IsObject() {
		return nil, fmt.Errorf("%w: missing chart.result[0]", ErrMalformedChart)
	}

	price := result.Get("meta.regularMarketPrice")
	prevClose := result.Get("meta.previousClose")
	if price.Type != gjson.Number || prevClose.Type != gjson.Number {
		return nil, fmt.Errorf("%w: missing regularMarketPrice or previousClose", ErrMalformedChart)
	}
	if prevClose.Float() <= 0 {
		return nil, fmt.Errorf("%w: non-positive previousClose", ErrMalformedChart)
	}

	volumes := result.Get("indicators.quote.0.volume")
	if !volumes.IsArray() {
		return nil, fmt.Errorf("%w: missing indicators.quote[0].volume", ErrMalformedChart)
	}

	// A null or absent trailing volume reads as zero.
	var volume int64
	if arr := volumes.Array(); len(arr) > 0 && arr[len(arr)-1].Type == gjson.Number {
		volume = arr[len(arr)-1].Int()
	}

	return &domain.ChartSnapshot{
		Symbol:        symbol,
		Price:         price.Float(),
		PreviousClose: prevClose.Float(),
		Volume:        volume,
	}, nil
}
