package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkpost.backend/internal/config"
	"inkpost.backend/internal/infrastructure/notify"
	"inkpost.backend/internal/usecases"
	plog "inkpost.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origRunServer := runServer

	loadDotenv = func(...string) error { return nil }
	initLog = plog.Init

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		runServer = origRunServer
	})
}

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            "18080",
			Env:             "development",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
			AllowedOrigins:  []string{"http://localhost:3000"},
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "inkpost",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			URL: "redis://localhost:6379",
		},
		JWT: config.JWTConfig{
			Secret:        "jwt-secret-for-tests",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
		Account: config.AccountConfig{
			EmailVerification:  config.VerificationMandatory,
			ActivationStrategy: config.StrategyLink,
			OTPExpirySeconds:   300,
			DispatchTimeout:    time.Second,
		},
		Token: config.TokenConfig{
			Secret:         "token-secret-for-tests",
			Bucket:         24 * time.Hour,
			TimeoutBuckets: 3,
		},
		Site: config.SiteConfig{
			Name:           "Inkpost",
			Domain:         "localhost:18080",
			Protocol:       "http",
			ActivationPath: "/api/v1/accounts/activate",
			ResetPath:      "/password-reset",
		},
	}
}

func sqliteDB(name string) func(config.DatabaseConfig, string) (*gorm.DB, error) {
	return func(config.DatabaseConfig, string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	}
}

func TestRunMainProcess_InvalidConfig(t *testing.T) {
	withMainHooks(t)

	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.JWT.Secret = "short"
		return cfg
	}
	initRedis = func(string, string) error {
		t.Fatal("redis must not be touched with an invalid config")
		return nil
	}

	err := runMainProcess()
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)

	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected redis init error")
	}
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)

	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = func(config.DatabaseConfig, string) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected db open error")
	}
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)

	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = sqliteDB("main_server_err")
	runServer = func(context.Context, *http.Server, time.Duration) error { return errors.New("listen failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected server run error")
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)

	loadCfg = baseTestConfig
	initRedis = func(string, string) error { return nil }
	openDB = sqliteDB("main_success")

	var srv *http.Server
	var shutdown time.Duration
	runServer = func(_ context.Context, s *http.Server, d time.Duration) error {
		srv = s
		shutdown = d
		return nil
	}

	if err := runMainProcess(); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if srv == nil {
		t.Fatal("server was not started")
	}
	if srv.Addr != ":18080" || srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 5*time.Second {
		t.Fatalf("unexpected server settings: %s %s %s", srv.Addr, srv.ReadTimeout, srv.WriteTimeout)
	}
	if shutdown != time.Second {
		t.Fatalf("unexpected shutdown timeout: %s", shutdown)
	}

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/accounts/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/accounts/logout-all", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/accounts/users", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/accounts/activate/bad/bad-token", http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestServe_ShutsDownWhenContextEnds(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", Handler: http.NotFoundHandler()}
	if err := serve(context.Background(), srv, time.Second); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestAccountPolicy(t *testing.T) {
	cfg := baseTestConfig()
	policy := accountPolicy(cfg)
	if !policy.VerificationRequired || policy.Strategy != usecases.ActivationByLink {
		t.Fatalf("unexpected policy: %+v", policy)
	}
	if policy.BaseURL != "http://localhost:18080" || policy.ResetPath != "/password-reset" {
		t.Fatalf("unexpected links: %+v", policy)
	}

	cfg.Account.EmailVerification = config.VerificationOptional
	cfg.Account.ActivationStrategy = config.StrategyOTP
	policy = accountPolicy(cfg)
	if policy.VerificationRequired || policy.Strategy != usecases.ActivationByOTP {
		t.Fatalf("unexpected policy: %+v", policy)
	}
}

func TestNewDispatcher(t *testing.T) {
	if _, ok := newDispatcher(config.SMTPConfig{}).(*notify.LogDispatcher); !ok {
		t.Fatal("expected log dispatcher without smtp host")
	}
	if _, ok := newDispatcher(config.SMTPConfig{Host: "smtp.example.com", Port: 587}).(*notify.Mailer); !ok {
		t.Fatal("expected smtp mailer")
	}
}
