package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tredia-investing/internal/bot"
	"tredia-investing/internal/cache"
	"tredia-investing/internal/config"
	"tredia-investing/internal/handler"
	"tredia-investing/internal/job"
	"tredia-investing/internal/provider"
	"tredia-investing/internal/service"
	"tredia-investing/pkg/metrics"
	"tredia-investing/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "tredia-investing/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	newStoreFunc           = cache.Open
	newChartsFunc          = newChartSource
	newFeedsFunc           = newFeedSource
	newAggregatorFunc      = service.NewAggregator
	newPollerFunc          = job.NewPoller
	startPollerFunc        = func(p *job.Poller, ctx context.Context) *job.Schedule { return p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Tredia Investing API
// @version         1.0
// @description     Market quotes, indices, news and portfolio metrics for the Tredia Investing dashboard.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := loadEnvFunc(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}

	cfg := loadConfigFunc()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warn("unknown LOG_LEVEL, keeping info", "value", cfg.LogLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, cfg.TracingEnabled, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("error shutting down tracer provider", "err", err)
		}
	}()

	m := metrics.New()
	store := newStoreFunc(ctx, cfg.CacheBackend, cfg.RedisURL, time.Duration(cfg.CacheRetentionHours)*time.Hour)

	aggregator := newAggregatorFunc(tracer, newChartsFunc(tracer, cfg), newFeedsFunc(tracer, cfg), store, m,
		service.AggregatorConfig{
			TTL:          time.Duration(cfg.CacheTTLSecs) * time.Second,
			NewsFeeds:    cfg.NewsFeeds,
			NewsMaxItems: cfg.NewsMaxItems,
			Holdings:     cfg.Holdings,
		})

	// Start dashboard poller (stopped explicitly before the server exits)
	poller := newPollerFunc(tracer, aggregator, cfg.Holdings, cfg.PollInterval, m)
	schedule := startPollerFunc(poller, ctx)

	// Start Telegram bot
	telegram, err := startTelegramBotFunc(cfg.TelegramBotToken, aggregator, poller)
	if err != nil {
		log.Error("Telegram bot disabled", "err", err)
	}

	h := newHandlerFunc(tracer, aggregator, poller, m, handler.Options{
		APIKey:      cfg.APIKey,
		CORSOrigins: cfg.CORSOrigins,
	})

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.ServiceName))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down server...")

	if telegram != nil {
		telegram.Stop()
	}
	if schedule != nil {
		schedule.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", "err", err)
	}

	log.Info("Server exiting")
}

func newChartSource(tracer trace.Tracer, cfg *config.Config) service.ChartSource {
	return provider.NewChartProvider(tracer, cfg.QuoteRelayURL, cfg.QuoteUpstreamURL,
		time.Duration(cfg.UpstreamTimeoutSecs)*time.Second, cfg.UpstreamRatePerSec)
}

func newFeedSource(tracer trace.Tracer, cfg *config.Config) service.FeedSource {
	return provider.NewRSSProvider(tracer, time.Duration(cfg.UpstreamTimeoutSecs)*time.Second)
}
