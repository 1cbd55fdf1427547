package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"winelabel/internal/config"
	"winelabel/internal/di"
	applog "winelabel/internal/log"
)

var (
	loadEnvFunc    = func() error { return config.LoadEnvFiles() }
	loadConfigFunc = config.Load
	configureLog   = func(cfg config.LogConfig) error {
		return applog.Configure(os.Stdout, cfg.Format, cfg.Level)
	}
	newServerFunc = func(cfg config.Config) (di.Listener, error) {
		return di.Web(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	if err := loadEnvFunc(); err != nil {
		applog.Error(ctx, "failed to load env files", "error", err)
		return 1
	}
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := configureLog(cfg.Log); err != nil {
		applog.Error(ctx, "invalid log configuration", "error", err)
		return 1
	}

	srv, err := newServerFunc(cfg)
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	sigCh, unsubscribe := subscribeShutdownSig()
	defer unsubscribe()

	applog.Info(ctx, "starting admin web server", "addr", cfg.Server.Addr, "api", cfg.API.BaseURL)
	if err := di.Serve(ctx, srv, sigCh); err != nil {
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}
	return 0
}
