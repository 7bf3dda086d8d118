package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the tracker.
// Configuration can come from a YAML file (config.yaml) or environment
// variables. Environment variables always override YAML values.
// Secrets (the database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Scraper configuration
	Scraper ScraperConfig `yaml:"scraper"`

	// Scheduler configuration
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// MigrationsPath is the directory containing SQL migration files.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"wbest"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"wbest_tracker"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	// Pool tuning. Connections older than MaxConnLifetime are recycled;
	// idle ones are reaped after MaxConnIdleTime.
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"PGMAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"PGMAX_CONN_IDLE_TIME" env-default:"30m"`
}

// URL returns the connection string for pgx and golang-migrate.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// ScraperConfig holds settings for the headless-browser scraper.
type ScraperConfig struct {
	// BaseURL is the ranking page. The category codes from Categories are
	// substituted into the query string per run.
	BaseURL     string        `yaml:"base_url" env:"SCRAPER_BASE_URL" env-default:"https://display.wconcept.co.kr/rn/best"`
	MaxProducts int           `yaml:"max_products" env:"SCRAPER_MAX_PRODUCTS" env-default:"200"`
	Timeout     time.Duration `yaml:"timeout" env:"SCRAPER_TIMEOUT" env-default:"90s"`
	MaxScrolls  int           `yaml:"max_scrolls" env:"SCRAPER_MAX_SCROLLS" env-default:"20"`
	UserAgent   string        `yaml:"user_agent" env:"SCRAPER_USER_AGENT" env-default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

	// Categories maps a category key to its display category codes.
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig identifies one ranking category to crawl.
type CategoryConfig struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	DisplayType string `yaml:"display_type"`
	SubType     string `yaml:"sub_type"`
}

// SchedulerConfig controls the periodic crawl trigger.
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled" env:"SCHEDULER_ENABLED" env-default:"true"`
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1h"`
	// RunOnStart triggers one crawl immediately after startup.
	RunOnStart bool `yaml:"run_on_start" env:"SCHEDULER_RUN_ON_START" env-default:"false"`
}

// Load reads configuration from config.yaml (if present) and the environment.
func Load(version string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	cfg.Version = version

	if len(cfg.Scraper.Categories) == 0 {
		cfg.Scraper.Categories = defaultCategories()
	}

	return &cfg, nil
}

// defaultCategories mirrors the site's top-level best-ranking categories.
func defaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Key: "outer", Name: "Outerwear", DisplayType: "10101", SubType: "10101201"},
		{Key: "top", Name: "Tops", DisplayType: "10101", SubType: "10101202"},
		{Key: "pants", Name: "Pants", DisplayType: "10101", SubType: "10101204"},
		{Key: "dress", Name: "Dresses", DisplayType: "10101", SubType: "10101203"},
	}
}
