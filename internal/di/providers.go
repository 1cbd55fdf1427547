package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/do/v2"
	"gorm.io/gorm"

	"winelabel/internal/api"
	"winelabel/internal/auth"
	"winelabel/internal/cache"
	"winelabel/internal/client"
	"winelabel/internal/config"
	"winelabel/internal/db"
	"winelabel/internal/db/mock"
	"winelabel/internal/handlers"
	applog "winelabel/internal/log"
	"winelabel/internal/server"
	"winelabel/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// WebServer is the admin web server.
type WebServer struct {
	*server.Server
}

// APIServer serves the backend API.
type APIServer struct {
	*http.Server
}

func (s *APIServer) Start() error {
	applog.Info(context.Background(), "api server listening", "addr", s.Addr)
	return s.ListenAndServe()
}

func (s *APIServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Database is the backend's gorm handle.
type Database struct {
	*gorm.DB
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func ProvideClient(i do.Injector) (*client.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return client.New(client.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout})
}

func ProvideCache(i do.Injector) (*cache.Memory, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return cache.NewMemory(cfg.API.CacheTTL), nil
}

func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideWebServer builds the admin web server on top of the API client.
func ProvideWebServer(i do.Injector) (*WebServer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	backend, err := do.Invoke[*client.Client](i)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Backend:   backend,
		Cache:     do.MustInvoke[*cache.Memory](i),
		Validator: do.MustInvoke[*validation.Validator](i),
		Links: handlers.Links{
			PublicBaseURL: cfg.Label.PublicBaseURL,
			QRService:     cfg.Label.QRService,
			QRSize:        cfg.Label.QRSize,
		},
	})
	if err != nil {
		return nil, err
	}
	applog.Debug(context.Background(), "web server provided", "api", backend.BaseURL())
	return &WebServer{Server: srv}, nil
}

// ProvideDatabase opens the configured database, or the seeded in-memory one when
// UseMock is set.
func ProvideDatabase(i do.Injector) (*Database, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if cfg.Database.UseMock {
		database, err := mock.New(context.Background())
		if err != nil {
			return nil, fmt.Errorf("open mock database: %w", err)
		}
		applog.Info(context.Background(), "using seeded mock database", "email", mock.Email)
		return &Database{DB: database}, nil
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}
	return &Database{DB: database}, nil
}

func ProvideIssuer(i do.Injector) (*auth.Issuer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
}

// ProvideAPIServer mounts the backend routes on an http.Server.
func ProvideAPIServer(i do.Injector) (*APIServer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	database, err := do.Invoke[*Database](i)
	if err != nil {
		return nil, err
	}
	tokens, err := do.Invoke[*auth.Issuer](i)
	if err != nil {
		return nil, err
	}
	v := do.MustInvoke[*validation.Validator](i)

	backend := api.New(database.DB, tokens, v, api.Options{
		AllowedOrigins: cfg.API.AllowedOrigins,
		LoginRate:      cfg.Auth.LoginRate,
		LoginBurst:     cfg.Auth.LoginBurst,
	})
	return &APIServer{Server: &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}}, nil
}
