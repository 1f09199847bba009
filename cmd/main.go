package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/immxrtalbeast/bolao/internal/api/http"
	"github.com/immxrtalbeast/bolao/internal/auth"
	"github.com/immxrtalbeast/bolao/internal/config"
	"github.com/immxrtalbeast/bolao/internal/metrics"
	"github.com/immxrtalbeast/bolao/internal/repository"
	"github.com/immxrtalbeast/bolao/internal/service"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
	"github.com/immxrtalbeast/bolao/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	log.Info("starting bolao", slog.String("env", cfg.Env))

	db, err := connectDatabase(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect database", sl.Err(err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("failed to init token manager", sl.Err(err))
		os.Exit(1)
	}

	var (
		recorder       metrics.Recorder = metrics.Nop{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewCollector(reg)
		metricsHandler = metrics.Handler(reg)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	poolRepo := repository.NewPostgresPoolRepository(db, cfg.Pool.PreviewSize)

	userService := service.NewUserService(userRepo, log)
	poolService := service.NewPoolService(poolRepo, log, recorder, service.PoolOptions{
		CodeLength:   cfg.Pool.CodeLength,
		CodeAttempts: cfg.Pool.CodeAttempts,
	})

	poolController := httpapi.NewPoolController(poolService, log)
	userController := httpapi.NewUserController(userService, tokens, log)

	var limiter *httpapi.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = httpapi.NewRateLimiter(httpapi.RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
			CleanupInterval:   cfg.RateLimit.CleanupInterval,
		}, log)
		defer limiter.Stop()
	}

	router := httpapi.SetupRouter(poolController, userController, httpapi.RouterOptions{
		AllowOrigins:   cfg.HTTP.AllowOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tokens:         tokens,
		Log:            log,
		Metrics:        recorder,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: metricsHandler,
		RateLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("http server stopped", sl.Err(err))
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", sl.Err(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("failed to close database", sl.Err(err))
		}
	}

	log.Info("stopped")
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	return slog.New(opts.NewPrettyHandler(os.Stdout))
}

func connectDatabase(cfg config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	if cfg.Migrate {
		if err := repository.Migrate(cfg.DSN); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database schema is up to date")
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}
