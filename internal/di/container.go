// Package di wires the winelabel binaries. Each binary gets its own container; the
// services are built lazily on first invocation.
package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/samber/do/v2"

	"winelabel/internal/config"
	applog "winelabel/internal/log"
)

// Listener is a server that blocks in Start until Stop is called.
type Listener interface {
	Start() error
	Stop() error
}

// App owns a container and the listener resolved from it.
type App struct {
	injector *do.RootScope
	listener Listener
	closers  []func() error
}

// Injector exposes the container, mainly for tests.
func (a *App) Injector() *do.RootScope {
	return a.injector
}

func (a *App) Start() error {
	return a.listener.Start()
}

// Stop shuts the listener down, then releases the remaining services.
func (a *App) Stop() error {
	errs := []error{a.listener.Stop()}
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// NewWebContainer registers the admin web app services.
func NewWebContainer(cfg config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, &cfg)

	do.Provide(injector, ProvideClient)
	do.Provide(injector, ProvideCache)
	do.Provide(injector, ProvideValidator)
	do.Provide(injector, ProvideWebServer)

	return injector
}

// NewAPIContainer registers the backend API services.
func NewAPIContainer(cfg config.Config) *do.RootScope {
	injector := do.New()
	do.ProvideValue(injector, &cfg)

	do.Provide(injector, ProvideDatabase)
	do.Provide(injector, ProvideIssuer)
	do.Provide(injector, ProvideValidator)
	do.Provide(injector, ProvideAPIServer)

	return injector
}

// Web builds the admin web app.
func Web(cfg config.Config) (*App, error) {
	injector := NewWebContainer(cfg)
	srv, err := do.Invoke[*WebServer](injector)
	if err != nil {
		return nil, fmt.Errorf("build web server: %w", err)
	}
	applog.Debug(context.Background(), "web container ready", "addr", cfg.Server.Addr)
	return &App{injector: injector, listener: srv}, nil
}

// API builds the backend API server.
func API(cfg config.Config) (*App, error) {
	injector := NewAPIContainer(cfg)
	srv, err := do.Invoke[*APIServer](injector)
	if err != nil {
		return nil, fmt.Errorf("build api server: %w", err)
	}
	database := do.MustInvoke[*Database](injector)
	applog.Debug(context.Background(), "api container ready", "addr", cfg.API.Addr)
	return &App{injector: injector, listener: srv, closers: []func() error{database.Close}}, nil
}

// Serve runs srv until it fails or a signal arrives, then stops it. A server closed
// by Stop is not an error.
func Serve(ctx context.Context, srv Listener, signals <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-signals:
		applog.Info(ctx, "shutdown signal received", "signal", sig.String())
	}

	if err := srv.Stop(); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
