package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vigilance-driver/vigilance-go/internal/config"
	"github.com/vigilance-driver/vigilance-go/internal/crypto"
	"github.com/vigilance-driver/vigilance-go/internal/metrics"
	"github.com/vigilance-driver/vigilance-go/internal/repository"
	"github.com/vigilance-driver/vigilance-go/internal/server"
	"github.com/vigilance-driver/vigilance-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	tokens, err := crypto.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		slog.Error("token service", "error", err)
		os.Exit(1)
	}

	users, sessions, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("storage unavailable", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	handler := server.NewRouter(server.Deps{
		Logger:          logger,
		Metrics:         metrics.New(),
		Auth:            service.NewAuthService(users, tokens),
		Sessions:        service.NewSessionService(sessions),
		Tokens:          tokens,
		AllowedOrigin:   cfg.CORSAllowedOrigin,
		SessionMaxBytes: cfg.SessionMaxBytes,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func openStore(cfg config.Config) (service.UserStore, service.SessionStore, func(), error) {
	if cfg.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryUserRepository(), repository.NewMemorySessionRepository(), func() {}, nil
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.MigrateOnStart {
		if err := repository.Migrate(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}

	return repository.NewUserRepository(db), repository.NewSessionRepository(db), closeDB, nil
}
