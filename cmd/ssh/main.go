package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"tredia-investing/internal/cache"
	"tredia-investing/internal/config"
	"tredia-investing/internal/job"
	"tredia-investing/internal/provider"
	"tredia-investing/internal/service"
	"tredia-investing/internal/tui"
	"tredia-investing/pkg/metrics"
	"tredia-investing/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initTracerFunc    = tracing.InitTracer
	newStoreFunc      = cache.Open
	startPollerFunc   = func(p *job.Poller, ctx context.Context) *job.Schedule { return p.Start(ctx) }
	newWishServerFunc = wish.NewServer
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	if err := loadEnvFunc(); err != nil {
		log.Debug("no .env file loaded", "err", err)
	}
	cfg := loadConfigFunc()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
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

	timeout := time.Duration(cfg.UpstreamTimeoutSecs) * time.Second
	m := metrics.New()
	store := newStoreFunc(ctx, cfg.CacheBackend, cfg.RedisURL, time.Duration(cfg.CacheRetentionHours)*time.Hour)
	aggregator := service.NewAggregator(tracer,
		provider.NewChartProvider(tracer, cfg.QuoteRelayURL, cfg.QuoteUpstreamURL, timeout, cfg.UpstreamRatePerSec),
		provider.NewRSSProvider(tracer, timeout),
		store, m,
		service.AggregatorConfig{
			TTL:          time.Duration(cfg.CacheTTLSecs) * time.Second,
			NewsFeeds:    cfg.NewsFeeds,
			NewsMaxItems: cfg.NewsMaxItems,
			Holdings:     cfg.Holdings,
		})

	poller := job.NewPoller(tracer, aggregator, cfg.Holdings, cfg.PollInterval, m)
	schedule := startPollerFunc(poller, ctx)

	// Build Wish SSH server
	srv, err := newWishServerFunc(
		wish.WithAddress(cfg.SSHAddr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		authOption(cfg.SSHAuthorizedKeys),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				model := tui.NewModel(poller, s.User())
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatal("failed to create SSH server", "err", err)
	}

	if srv != nil {
		go func() {
			log.Info("SSH server listening", "addr", cfg.SSHAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Error("SSH server stopped", "err", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down SSH server...")

	if schedule != nil {
		schedule.Stop()
	}
	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("SSH server shutdown error", "err", err)
		}
	}

	log.Info("SSH server exited")
}

// authOption restricts logins to an authorized_keys file when one is
// configured. Without it any public key is accepted and its fingerprint logged.
func authOption(authorizedKeys string) ssh.Option {
	if authorizedKeys != "" {
		return wish.WithAuthorizedKeys(authorizedKeys)
	}
	return wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
		log.Info("SSH auth accepted", "user", ctx.User(), "fingerprint", gossh.FingerprintSHA256(key))
		return true
	})
}
