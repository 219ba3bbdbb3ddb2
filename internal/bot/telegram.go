package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tredia-investing/internal/domain"
	"tredia-investing/internal/job"
	"tredia-investing/internal/service"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) domain.Result[domain.Quote]
}

type Dashboard interface {
	Snapshot() job.Snapshot
}

const maxNewsLines = 5

// StartTelegramBot registers the chat commands and starts long polling in the
// background. It returns a nil bot when no token is configured; callers stop a
// running bot with Stop.
func StartTelegramBot(token string, quotes QuoteFetcher, dashboard Dashboard) (*tele.Bot, error) {
	if token == "" {
		log.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	register(b, quotes, dashboard)

	log.Info("Telegram bot started")
	go b.Start()
	return b, nil
}

// quoteReply answers /quote. Symbols outside the accepted length never reach
// the fetcher.
func quoteReply(ctx context.Context, quotes QuoteFetcher, args []string) string {
	if len(args) == 0 {
		return "Usage: /quote AAPL"
	}
	symbol := domain.NormalizeSymbol(args[0])
	if !domain.ValidSymbol(symbol) {
		return "Invalid symbol: " + args[0]
	}
	return formatQuote(quotes.FetchQuote(ctx, symbol))
}

func register(b *tele.Bot, quotes QuoteFetcher, dashboard Dashboard) {
	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/quote", func(c tele.Context) error {
		return c.Send(quoteReply(context.Background(), quotes, c.Args()))
	})

	b.Handle("/portfolio", func(c tele.Context) error {
		return c.Send(formatPortfolio(dashboard.Snapshot()))
	})

	b.Handle("/indices", func(c tele.Context) error {
		return c.Send(formatIndices(dashboard.Snapshot().Indices))
	})

	b.Handle("/news", func(c tele.Context) error {
		return c.Send(formatNews(dashboard.Snapshot().News))
	})
}

func formatQuote(res domain.Result[domain.Quote]) string {
	q := res.Data
	msg := fmt.Sprintf(
		"%s\nPrice: $%.2f\nChange: %+.2f (%+.2f%%)\nVolume: %d",
		q.Symbol, q.Price, q.Change, q.ChangePercent, q.Volume,
	)
	return msg + provenanceNote(res.Provenance)
}

func formatPortfolio(snap job.Snapshot) string {
	var sb strings.Builder
	for _, q := range snap.Quotes {
		fmt.Fprintf(&sb, "%-6s $%9.2f  %+.2f%%\n", q.Symbol, q.Price, q.ChangePercent)
	}
	m := snap.Metrics
	fmt.Fprintf(&sb, "\nTotal: $%.2f (%+.2f, %s)\n", m.TotalValue, m.TotalChange, formatPercent(m.TotalChangePercent))
	fmt.Fprintf(&sb, "Volatility: %s  Beta: %.2f  Sharpe: %.2f  Max drawdown: %.1f%%",
		m.Volatility, m.Beta, m.SharpeRatio, m.MaxDrawdown)
	return sb.String() + provenanceNote(snap.Status[service.CategoryQuotes].Provenance)
}

func formatIndices(indices []domain.IndexQuote) string {
	lines := make([]string, 0, len(indices))
	for _, idx := range indices {
		lines = append(lines, fmt.Sprintf("%s: %.2f (%+.2f%%)", idx.Name, idx.Price, idx.ChangePercent))
	}
	if len(lines) == 0 {
		return "No index data yet."
	}
	return strings.Join(lines, "\n")
}

func formatNews(items []domain.NewsItem) string {
	if len(items) == 0 {
		return "No news yet."
	}
	if len(items) > maxNewsLines {
		items = items[:maxNewsLines]
	}
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%s] %s\n%s", item.Impact, item.Title, item.Time)
		if item.URL != "" {
			sb.WriteString("\n" + item.URL)
		}
	}
	return sb.String()
}

func formatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", pct)
}

func provenanceNote(p domain.Provenance) string {
	switch p {
	case domain.ProvenanceStale:
		return "\n(last known data, live source unavailable)"
	case domain.ProvenanceFallback:
		return "\n(placeholder data, live source unavailable)"
	default:
		return ""
	}
}
