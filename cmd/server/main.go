package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"inkpost.backend/internal/config"
	"inkpost.backend/internal/infrastructure/datasources/postgres"
	"inkpost.backend/internal/infrastructure/notify"
	"inkpost.backend/internal/infrastructure/repositories"
	"inkpost.backend/internal/interfaces/http/handlers"
	"inkpost.backend/internal/interfaces/http/middleware"
	"inkpost.backend/internal/usecases"
	"inkpost.backend/pkg/jwt"
	"inkpost.backend/pkg/logger"
	"inkpost.backend/pkg/metrics"
	"inkpost.backend/pkg/redis"
	"inkpost.backend/pkg/token"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig, env string) (*gorm.DB, error) {
		sqlDB, err := postgres.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return postgres.NewGorm(sqlDB, env)
	}
	getStdDB      = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	notifyContext = signal.NotifyContext
	runServer     = serve
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	initLog(cfg.Server.Env, cfg.Log.Level)
	defer func() { _ = logger.Sync() }()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer func() { _ = redis.Close() }()
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database, cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to database")

	m := metrics.New()
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	codeRepo := repositories.NewOneTimeCodeRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Usecases
	otpService := usecases.NewOTPService(codeRepo, cfg.Account.OTPExpirySeconds)
	ledger := usecases.NewSessionLedger(sessionRepo, uow, redis.NewRevocationCache(), m)
	notifier := notify.NewNotifier(newDispatcher(cfg.SMTP), cfg.Site.Name)
	accountUsecase := usecases.NewAccountUsecase(
		accountRepo,
		otpService,
		token.NewGenerator(cfg.Token.Secret, cfg.Token.Bucket, cfg.Token.TimeoutBuckets),
		notifier,
		m,
		accountPolicy(cfg),
	)
	authUsecase := usecases.NewAuthUsecase(accountRepo, uow, ledger, jwtService, m)

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountUsecase)
	otpHandler := handlers.NewOTPHandler(accountUsecase)
	authHandler := handlers.NewAuthHandler(authUsecase, accountUsecase)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	registerAPIV1Routes(r, routeDeps{
		accountHandler: accountHandler,
		otpHandler:     otpHandler,
		authHandler:    authHandler,
		authMiddleware: middleware.AuthMiddleware(jwtService, authUsecase),
		idempotency:    middleware.IdempotencyMiddleware(),
	})

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	runCtx, stop := notifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Server starting",
		zap.String("site", cfg.Site.Name),
		zap.String("addr", srv.Addr),
		zap.String("base_url", cfg.Site.BaseURL()),
	)
	if err := runServer(runCtx, srv, cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

// serve runs srv until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newDispatcher(cfg config.SMTPConfig) notify.Dispatcher {
	if cfg.Host == "" {
		return notify.NewLogDispatcher()
	}
	return notify.NewMailer(cfg)
}

func accountPolicy(cfg *config.Config) usecases.AccountPolicy {
	strategy := usecases.ActivationByLink
	if cfg.Account.ActivationStrategy == config.StrategyOTP {
		strategy = usecases.ActivationByOTP
	}
	return usecases.AccountPolicy{
		VerificationRequired: cfg.Account.VerificationRequired(),
		Strategy:             strategy,
		BaseURL:              cfg.Site.BaseURL(),
		ActivationPath:       cfg.Site.ActivationPath,
		ResetPath:            cfg.Site.ResetPath,
		DispatchTimeout:      cfg.Account.DispatchTimeout,
	}
}
