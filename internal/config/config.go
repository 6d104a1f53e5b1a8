package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Scoreboard feed (ESPN MLB scoreboard API)
	ScoreboardBaseURL string        `envconfig:"SCOREBOARD_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/baseball/mlb"`
	ScoreboardTimeout time.Duration `envconfig:"SCOREBOARD_TIMEOUT" default:"30s"`

	// Opening odds feed (SportsDataIO MLB odds API)
	OddsAPIKey  string        `envconfig:"ODDS_API_KEY" required:"true"`
	OddsBaseURL string        `envconfig:"ODDS_BASE_URL" default:"https://api.sportsdata.io/v3/mlb"`
	OddsTimeout time.Duration `envconfig:"ODDS_TIMEOUT" default:"30s"`

	// Sportsbook snapshot feed (line snapshot service scraped off the book)
	BookSnapshotURL     string        `envconfig:"BOOK_SNAPSHOT_URL" default:""`
	BookSnapshotTimeout time.Duration `envconfig:"BOOK_SNAPSHOT_TIMEOUT" default:"30s"`
	BookRateLimit       float64       `envconfig:"BOOK_RATE_LIMIT" default:"0.5"` // requests per second
	BookRateBurst       int           `envconfig:"BOOK_RATE_BURST" default:"1"`

	// Model service (predictions over HTTP)
	ModelServiceURL     string        `envconfig:"MODEL_SERVICE_URL" default:""`
	ModelServiceTimeout time.Duration `envconfig:"MODEL_SERVICE_TIMEOUT" default:"60s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"mlb_edge"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mlb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP API
	APIPort int `envconfig:"API_PORT" default:"8080"`

	// Pipeline
	SeasonStart   string  `envconfig:"SEASON_START" default:"2025-03-27"`
	PicksPerDay   int     `envconfig:"PICKS_PER_DAY" default:"5"`
	MinConfidence int     `envconfig:"MIN_CONFIDENCE" default:"1"` // minimum tier for logged picks
	SpreadMin     float64 `envconfig:"CLAMP_SPREAD_MIN" default:"-2.0"`
	SpreadMax     float64 `envconfig:"CLAMP_SPREAD_MAX" default:"2.0"`
	TotalMin      float64 `envconfig:"CLAMP_TOTAL_MIN" default:"6.0"`
	TotalMax      float64 `envconfig:"CLAMP_TOTAL_MAX" default:"11.0"`

	// Scheduler
	EnableScheduler bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	DailyRunCron    string `envconfig:"DAILY_RUN_CRON" default:"0 6 * * *"`
	CatchUpDays     int    `envconfig:"CATCH_UP_DAYS" default:"3"`
	RunOnStart      bool   `envconfig:"RUN_ON_START" default:"true"`

	// Caching TTL (in seconds)
	CacheTTLScores int `envconfig:"CACHE_TTL_SCORES" default:"21600"` // 6 hours
	CacheTTLOdds   int `envconfig:"CACHE_TTL_ODDS" default:"3600"`   // 1 hour

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OddsAPIKey == "" {
		return fmt.Errorf("ODDS_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if _, err := time.Parse("2006-01-02", c.SeasonStart); err != nil {
		return fmt.Errorf("SEASON_START must be YYYY-MM-DD: %w", err)
	}

	if c.PicksPerDay < 1 {
		return fmt.Errorf("PICKS_PER_DAY must be at least 1")
	}

	if c.SpreadMin >= c.SpreadMax || c.TotalMin >= c.TotalMax {
		return fmt.Errorf("clamp bounds must be ordered min < max")
	}

	return nil
}

// SeasonStartDate returns the parsed season start day.
func (c *Config) SeasonStartDate() time.Time {
	d, _ := time.Parse("2006-01-02", c.SeasonStart)
	return d
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
