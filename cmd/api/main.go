package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/example/f4y/internal/config"
	"github.com/example/f4y/internal/fx"
	"github.com/example/f4y/internal/handler"
	"github.com/example/f4y/internal/logging"
	"github.com/example/f4y/internal/middleware"
	"github.com/example/f4y/internal/repository"
	"github.com/example/f4y/internal/service"
	"github.com/example/f4y/internal/service/ledger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("f4y-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	accountRepo := repository.NewAccountRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	rates := newRateProvider(cfg)
	accountSvc := service.NewAccountService(accountRepo)
	ledgerSvc := ledger.NewService(accountRepo, txnRepo, rates, db)

	accountHandler := handler.NewAccountHandler(accountSvc, ledgerSvc)
	txnHandler := handler.NewTransactionHandler(ledgerSvc)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/accounts", accountHandler.Create)
	mux.HandleFunc("GET /api/accounts", accountHandler.List)
	mux.HandleFunc("GET /api/accounts/{number}", accountHandler.Get)
	mux.HandleFunc("POST /api/transactions", txnHandler.Create)
	mux.HandleFunc("GET /api/transactions/{id}", txnHandler.Get)

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newRateProvider builds the fixer-style HTTP client, wrapped in a Redis
// cache when REDIS_URL is set.
func newRateProvider(cfg *config.Config) ledger.RateProvider {
	client := fx.NewClient(cfg.RatesURL, time.Duration(cfg.RatesTimeoutS)*time.Second)
	if cfg.RedisURL == "" {
		return client
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, rate caching disabled", "error", err)
		return client
	}
	return fx.NewCachedProvider(client, redis.NewClient(opts), time.Duration(cfg.RateCacheTTLS)*time.Second)
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	var lastErr error
	for i := range 30 {
		if lastErr = db.Ping(); lastErr == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
