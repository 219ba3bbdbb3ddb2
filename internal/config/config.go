package config

import (
	"os"
	"strconv"
	"strings"

	"tredia-investing/internal/domain"

	"github.com/charmbracelet/log"
)

type Config struct {
	HTTPAddr string
	APIKey   string
	LogLevel string

	Holdings     []string
	PollInterval int

	CacheBackend        string
	CacheTTLSecs        int
	CacheRetentionHours int
	RedisURL            string

	QuoteRelayURL       string
	QuoteUpstreamURL    string
	UpstreamTimeoutSecs int
	UpstreamRatePerSec  int

	NewsFeeds    []string
	NewsMaxItems int

	CORSOrigins []string

	TracingEnabled bool
	OTLPEndpoint   string

	TelegramBotToken string

	SSHAddr           string
	SSHHostKeyPath    string
	SSHAuthorizedKeys string
}

const (
	defaultRelayURL    = "https://api.allorigins.win/raw"
	defaultUpstreamURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

func Load() *Config {
	cfg := &Config{
		APIKey:   strings.TrimSpace(os.Getenv("API_KEY")),
		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Holdings = splitList(os.Getenv("HOLDINGS"), true)
	if len(cfg.Holdings) == 0 {
		cfg.Holdings = append([]string(nil), domain.DefaultHoldings...)
	}

	cfg.PollInterval = positiveInt("POLL_INTERVAL_SECS", 300)
	cfg.CacheTTLSecs = positiveInt("CACHE_TTL_SECS", 300)
	cfg.CacheRetentionHours = positiveInt("CACHE_RETENTION_HOURS", 24)
	cfg.UpstreamTimeoutSecs = positiveInt("UPSTREAM_TIMEOUT_SECS", 15)
	cfg.UpstreamRatePerSec = positiveInt("UPSTREAM_RATE_PER_SEC", 5)
	cfg.NewsMaxItems = positiveInt("NEWS_MAX_ITEMS", 10)

	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend != "memory" && cfg.CacheBackend != "redis" {
		log.Warn("unsupported CACHE_BACKEND, defaulting to memory", "value", cfg.CacheBackend)
		cfg.CacheBackend = "memory"
	}
	if cfg.CacheBackend == "redis" && cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	// An explicitly empty relay means the upstream is called directly.
	if v, ok := os.LookupEnv("QUOTE_RELAY_URL"); ok {
		cfg.QuoteRelayURL = strings.TrimSpace(v)
	} else {
		cfg.QuoteRelayURL = defaultRelayURL
	}

	cfg.QuoteUpstreamURL = strings.TrimRight(strings.TrimSpace(os.Getenv("QUOTE_UPSTREAM_URL")), "/")
	if cfg.QuoteUpstreamURL == "" {
		cfg.QuoteUpstreamURL = defaultUpstreamURL
	}

	cfg.NewsFeeds = splitList(os.Getenv("NEWS_FEEDS"), false)
	if len(cfg.NewsFeeds) == 0 {
		log.Info("NEWS_FEEDS not set, news will use the built-in headlines")
	}

	cfg.CORSOrigins = splitList(os.Getenv("CORS_ORIGINS"), false)
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")
	cfg.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}

	cfg.TelegramBotToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	cfg.SSHAddr = strings.TrimSpace(os.Getenv("SSH_ADDR"))
	if cfg.SSHAddr == "" {
		cfg.SSHAddr = "0.0.0.0:2222"
	}
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/tredia_ed25519"
	}
	cfg.SSHAuthorizedKeys = strings.TrimSpace(os.Getenv("SSH_AUTHORIZED_KEYS"))

	if cfg.APIKey == "" {
		log.Warn("API_KEY not set, refresh endpoints are unauthenticated")
	}

	return cfg
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Warn("invalid integer, using default", "key", key, "value", v, "default", def)
	}
	return def
}

func splitList(raw string, upper bool) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}
