// Package config loads and validates runtime configuration at startup.
// Values come from the environment (with optional .env file support);
// fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/svensoldin/job-searcher/internal/model"
)

// Config holds all runtime configuration for the searcher.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Dev switches to the in-memory store and a log-only notification sink,
	// so the pipeline can run without Postgres, Redis or SMTP.
	Dev bool `env:"DEV" envDefault:"false"`

	ScrapeIntervalHours int           `env:"SCRAPE_INTERVAL_HOURS" envDefault:"24"`
	FetchDelay          time.Duration `env:"FETCH_DELAY" envDefault:"2s"`
	HTTPTimeout         time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	RunLockTTL          time.Duration `env:"RUN_LOCK_TTL" envDefault:"30m"`

	// Search parameters for the listing pages.
	SearchKeywords   string `env:"SEARCH_KEYWORDS" envDefault:"software developer"`
	SearchLocation   string `env:"SEARCH_LOCATION"`
	SearchExperience string `env:"SEARCH_EXPERIENCE"`

	// Scoring criteria.
	Keywords         []string `env:"KEYWORDS" envSeparator:","`
	Locations        []string `env:"LOCATIONS" envSeparator:","`
	ExperienceLevel  string   `env:"EXPERIENCE_LEVEL"`
	CoreSkills       []string `env:"CORE_SKILLS" envSeparator:","`
	RemotePreference string   `env:"REMOTE_PREFERENCE"`
	ExcludedKeywords []string `env:"EXCLUDED_KEYWORDS" envSeparator:","`

	// Notification sink.
	SMTPHost       string `env:"SMTP_HOST"`
	SMTPPort       int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPass       string `env:"SMTP_PASS"`
	MailFrom       string `env:"MAIL_FROM"`
	MailTo         string `env:"MAIL_TO"`
	NotifyMinScore int    `env:"NOTIFY_MIN_SCORE" envDefault:"70"`
	NotifyLimit    int    `env:"NOTIFY_LIMIT" envDefault:"25"`
}

// Load reads the environment (and an optional .env file) and returns a
// validated Config.
func Load() (*Config, error) {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if !cfg.Dev {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required (or set DEV=true)")
		}
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required (or set DEV=true)")
		}
	}
	if cfg.ScrapeIntervalHours < 1 {
		return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %d", cfg.ScrapeIntervalHours)
	}

	return cfg, nil
}

// Criteria assembles the scoring criteria for a run.
func (c *Config) Criteria() model.Criteria {
	return model.Criteria{
		Keywords:         c.Keywords,
		Locations:        c.Locations,
		ExperienceLevel:  c.ExperienceLevel,
		CoreSkills:       c.CoreSkills,
		RemotePreference: c.RemotePreference,
		ExcludedKeywords: c.ExcludedKeywords,
	}
}

// SearchParams assembles the listing-search parameters for a run.
func (c *Config) SearchParams() model.SearchParams {
	return model.SearchParams{
		Keywords:        c.SearchKeywords,
		Location:        c.SearchLocation,
		ExperienceLevel: c.SearchExperience,
	}
}
