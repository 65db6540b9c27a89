package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the process-level configuration, loaded once at startup from the
// environment (optionally seeded from a .env file). Per-guild settings live in
// storage, not here.
type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN" validate:"required"`
	DatabaseURL       string   `env:"DATABASE_URL" envDefault:"muster.db"`
	LogLevel          string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile           string   `env:"LOG_FILE"`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	DeveloperIDs      []string `env:"DEVELOPER_IDS" envSeparator:","`

	// Fallback timezone for guilds that never configured one.
	DefaultTimezone string `env:"DEFAULT_TIMEZONE" envDefault:"America/New_York"`

	PostingTick  time.Duration `env:"POSTING_TICK" envDefault:"1m" validate:"gte=1s"`
	ReminderTick time.Duration `env:"REMINDER_TICK" envDefault:"1m" validate:"gte=1s"`
	CleanupTick  time.Duration `env:"CLEANUP_TICK" envDefault:"1h" validate:"gte=1m"`

	// How long a guild may stay inactive before its rows are dropped, and how
	// long posted card messages stay in Discord before cleanup.
	GuildRetentionDays   int `env:"GUILD_RETENTION_DAYS" envDefault:"90" validate:"gt=0"`
	MessageRetentionDays int `env:"MESSAGE_RETENTION_DAYS" envDefault:"7" validate:"gt=0"`

	APITimeout  time.Duration `env:"API_TIMEOUT" envDefault:"10s" validate:"gte=1s"`
	GuildFanOut int           `env:"GUILD_FANOUT" envDefault:"4" validate:"gt=0"`
}

// New loads and validates the configuration. A missing .env file is not an
// error; system environment variables always apply.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// IsDeveloper reports whether the given user ID belongs to a configured developer.
func (cfg *Config) IsDeveloper(userID string) bool {
	for _, id := range cfg.DeveloperIDs {
		if id == userID {
			return true
		}
	}
	return false
}
