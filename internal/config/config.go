package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSecret = "dev-secret-change-in-production"

// Storage backends.
const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// ErrInsecureSecret is returned when production runs with the development signing secret.
var ErrInsecureSecret = errors.New("JWT_SECRET must be set in production environment")

type Config struct {
	Port              string        `env:"PORT" envDefault:"10000"`
	Env               string        `env:"ENV" envDefault:"development"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	Storage           string        `env:"STORAGE" envDefault:"mysql"`
	DatabaseDSN       string        `env:"DATABASE_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/vigilance_driver?parseTime=true"`
	JWTSecret         string        `env:"JWT_SECRET"`
	JWTExpiry         time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	CORSAllowedOrigin string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"https://vigilance-driver.vercel.app"`
	SessionMaxBytes   int64         `env:"SESSION_MAX_BYTES" envDefault:"1048576"`
	MigrateOnStart    bool          `env:"MIGRATE_ON_START" envDefault:"true"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == devSecret {
		if cfg.IsProduction() {
			return Config{}, ErrInsecureSecret
		}
		cfg.JWTSecret = devSecret
	}
	if cfg.Storage != StorageMySQL && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMySQL, StorageMemory, cfg.Storage)
	}
	if cfg.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRY must be positive, got %s", cfg.JWTExpiry)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func (c Config) NewLogger() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if c.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(h)
}
