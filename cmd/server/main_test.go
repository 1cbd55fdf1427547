package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"winelabel/internal/config"
	"winelabel/internal/di"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

func stubSeams(t *testing.T) {
	t.Helper()
	originalLoadEnv := loadEnvFunc
	originalLoadConfig := loadConfigFunc
	originalConfigureLog := configureLog
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig

	t.Cleanup(func() {
		loadEnvFunc = originalLoadEnv
		loadConfigFunc = originalLoadConfig
		configureLog = originalConfigureLog
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})

	loadEnvFunc = func() error { return nil }
	configureLog = func(config.LogConfig) error { return nil }
}

func TestRunStopsOnSignal(t *testing.T) {
	stubSeams(t)

	cfg := config.Config{
		Server:  config.ServerConfig{Addr: ":8080"},
		Log:     config.LogConfig{Level: "debug"},
		Session: config.SessionConfig{Lifetime: time.Hour, CookieName: "test", CookieSecure: true},
	}
	loadConfigFunc = func() (config.Config, error) { return cfg, nil }

	var built config.Config
	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(c config.Config) (di.Listener, error) {
		built = c
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background())
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if built.Session.CookieName != "test" {
		t.Fatalf("expected the loaded config to reach the server, got %+v", built.Session)
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	stubSeams(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{Server: config.ServerConfig{Addr: ":8080"}}, nil
	}
	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(config.Config) (di.Listener, error) {
		return serverStub, nil
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunHandlesServerConstructionError(t *testing.T) {
	stubSeams(t)

	loadConfigFunc = func() (config.Config, error) { return config.Config{}, nil }
	newServerFunc = func(config.Config) (di.Listener, error) {
		return nil, errors.New("backend unreachable")
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1 on construction failure, got %d", code)
	}
}

func TestRunReturnsErrorWhenConfigInvalid(t *testing.T) {
	stubSeams(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{}, errors.New("api base url must be absolute")
	}
	newServerFunc = func(config.Config) (di.Listener, error) {
		t.Fatal("server should not be built without a configuration")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1 for invalid configuration, got %d", code)
	}
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	stubSeams(t)

	loadConfigFunc = func() (config.Config, error) {
		return config.Config{Log: config.LogConfig{Level: "invalid"}}, nil
	}
	configureLog = func(config.LogConfig) error { return errors.New("invalid level") }

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1 for invalid log level, got %d", code)
	}
}
