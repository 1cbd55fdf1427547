package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"winelabel/internal/cache"
	"winelabel/internal/handlers"
	applog "winelabel/internal/log"
	"winelabel/internal/session"
	"winelabel/internal/validation"
)

// Backend is the API surface the admin web app depends on. *client.Client
// satisfies it.
type Backend interface {
	handlers.API
	session.Authenticator
}

// Config holds what the admin web server needs. Backend is required; Cache and
// Validator fall back to defaults in handlers.New.
type Config struct {
	Addr      string
	Session   SessionConfig
	Backend   Backend
	Cache     cache.Store
	Validator *validation.Validator
	Links     handlers.Links
}

// SessionConfig controls the session cookie. Zero values get defaults.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

const (
	defaultSessionLifetime = 12 * time.Hour
	defaultCookieName      = "winelabel_session"
	shutdownTimeout        = 5 * time.Second
)

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Lifetime <= 0 {
		c.Lifetime = defaultSessionLifetime
	}
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = defaultCookieName
	}
	return c
}

// newSessionManager keeps sessions in memory. The cookie is always HttpOnly and
// SameSite=Lax; Secure follows the configuration so plain HTTP works locally.
func newSessionManager(cfg SessionConfig) *scs.SessionManager {
	manager := scs.New()
	manager.Lifetime = cfg.Lifetime
	manager.Cookie.Name = cfg.CookieName
	manager.Cookie.Domain = cfg.CookieDomain
	manager.Cookie.HttpOnly = true
	manager.Cookie.Persist = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = cfg.CookieSecure
	return manager
}

// Server is the admin web app: the page routes behind the session gate, plus the
// public label pages.
type Server struct {
	httpServer *http.Server
}

// New wires the session gate and the page handlers around cfg.Backend.
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("server: backend is required")
	}
	sessionCfg := cfg.Session.withDefaults()
	manager := newSessionManager(sessionCfg)
	applog.Debug(context.Background(), "session manager configured",
		"lifetime", sessionCfg.Lifetime.String(),
		"cookieName", sessionCfg.CookieName,
		"cookieSecure", sessionCfg.CookieSecure,
	)

	sessions := session.New(cfg.Backend, manager)
	h := handlers.New(sessions, cfg.Backend, cfg.Cache, cfg.Validator, cfg.Links)

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           manager.LoadAndSave(newRouter(h, sessions)),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (s *Server) Start() error {
	applog.Info(context.Background(), "admin server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the full middleware chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
