package main

import (
	"context"
	"os"
	"testing"
	"time"

	"tredia-investing/internal/cache"
	"tredia-investing/internal/config"
	"tredia-investing/internal/job"

	"github.com/charmbracelet/ssh"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestMainBootstrap(t *testing.T) {
	restore := stubSSHDeps()
	defer restore()

	var options int
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) {
		options = len(ops)
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		main()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("main did not exit")
	}
	if options != 4 {
		t.Fatalf("expected address, host key, auth and middleware options, got %d", options)
	}
}

func TestAuthOption(t *testing.T) {
	if authOption("") == nil || authOption("/tmp/authorized_keys") == nil {
		t.Fatal("expected an auth option for both modes")
	}
}

func stubSSHDeps() func() {
	origLoadEnv := loadEnvFunc
	origLoadConfig := loadConfigFunc
	origInitTracer := initTracerFunc
	origNewStore := newStoreFunc
	origStartPoller := startPollerFunc
	origNewWishServer := newWishServerFunc
	origSetupSignal := setupSignalNotify
	origWait := waitForSignalFunc

	loadEnvFunc = func(...string) error { return nil }
	loadConfigFunc = func() *config.Config {
		return &config.Config{
			LogLevel:       "info",
			Holdings:       []string{"AAPL"},
			PollInterval:   60,
			SSHAddr:        "127.0.0.1:2222",
			SSHHostKeyPath: ".ssh/test_key",
		}
	}
	initTracerFunc = func(ctx context.Context, enabled bool, endpoint string) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	}
	newStoreFunc = func(context.Context, string, string, time.Duration) cache.Store { return cache.NewMemoryStore() }
	startPollerFunc = func(*job.Poller, context.Context) *job.Schedule { return nil }
	newWishServerFunc = func(ops ...ssh.Option) (*ssh.Server, error) { return nil, nil }
	setupSignalNotify = func(c chan<- os.Signal, sig ...os.Signal) {}
	waitForSignalFunc = func(<-chan os.Signal) {}

	return func() {
		loadEnvFunc = origLoadEnv
		loadConfigFunc = origLoadConfig
		initTracerFunc = origInitTracer
		newStoreFunc = origNewStore
		startPollerFunc = origStartPoller
		newWishServerFunc = origNewWishServer
		setupSignalNotify = origSetupSignal
		waitForSignalFunc = origWait
	}
}
