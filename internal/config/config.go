// Package config holds the process configuration. A single Config is built
// at startup from environment variables and injected into every component
// constructor.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSecret = "dev-secret-change-in-production"

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	Env         string        `env:"ENV" envDefault:"development"`
	DatabaseDSN string        `env:"DATABASE_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/devsaround?parseTime=true"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"dev-secret-change-in-production"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"168h"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	// Post visibility policy: when true the public listing and slug lookup
	// include drafts and future-scheduled posts, sorted by creation time.
	ShowDrafts bool `env:"SHOW_DRAFTS" envDefault:"false"`

	// Seed policy: when true seeding fails with a conflict if the author
	// already has posts; when false seeded slugs get a uniqueness suffix and
	// seeding always succeeds.
	SeedRequireEmpty bool   `env:"SEED_REQUIRE_EMPTY" envDefault:"true"`
	SeedSourceURL    string `env:"SEED_SOURCE_URL" envDefault:"https://jsonplaceholder.typicode.com/posts?_limit=10"`

	// Declared for parity with the deployed environment; no flow enforces
	// uploads in this service.
	MaxUploadSize    int64    `env:"MAX_FILE_SIZE" envDefault:"10485760"`
	AllowedFileTypes []string `env:"ALLOWED_FILE_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,image/gif"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Env == "production" && cfg.JWTSecret == devSecret {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs in development mode.
// Error detail beyond field errors is only serialized in development.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// RateLimitRPS converts the window/max pair into a per-second refill rate
// for the limiter.
func (c Config) RateLimitRPS() float64 {
	if c.RateLimitWindow <= 0 {
		return float64(c.RateLimitMax)
	}
	return float64(c.RateLimitMax) / c.RateLimitWindow.Seconds()
}
