package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Backend Backend `mapstructure:"backend"`
	Auth    Auth    `mapstructure:"auth"`
	Journal Journal `mapstructure:"journal"`
	Store   Store   `mapstructure:"store"`
	Logger  Logger  `mapstructure:"logger"`
	Server  Server  `mapstructure:"server"`
}

// Backend holds the configuration for the hosted database/auth service.
type Backend struct {
	URL            string        `mapstructure:"url"`
	ApiKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// Configured reports whether both the endpoint and the public key are set.
// Without them the gateway stays disabled and everything runs off the local store.
func (b Backend) Configured() bool {
	return b.URL != "" && b.ApiKey != ""
}

// Auth holds the session holder timeouts.
type Auth struct {
	SessionTimeout  time.Duration `mapstructure:"session_timeout"`
	ProfileTimeout  time.Duration `mapstructure:"profile_timeout"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"`
}

// Journal holds the configuration for trade listing and statistics.
type Journal struct {
	PageSize       int     `mapstructure:"page_size"`
	StartingEquity float64 `mapstructure:"starting_equity"`
	Timezone       string  `mapstructure:"timezone"`
}

// Location resolves the configured timezone, falling back to the local zone.
// LoadConfig rejects unknown zones, so the fallback only covers an empty value
// or a Journal built by hand.
func (j Journal) Location() *time.Location {
	if j.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Store holds the configuration for the local fallback store.
type Store struct {
	Driver        string `mapstructure:"driver"` // "memory", "sqlite" or "redis"
	DSN           string `mapstructure:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and the environment still apply.
func LoadConfig(path string) (config Config, err error) {
	// .env is optional
	if err = godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	if tz := config.Journal.Timezone; tz != "" {
		if _, lerr := time.LoadLocation(tz); lerr != nil {
			err = fmt.Errorf("invalid journal.timezone %q: %w", tz, lerr)
		}
	}
	return
}

func setDefaults(v *viper.Viper) {
	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.rate_limit", 10)
	v.SetDefault("backend.rate_limit_burst", 5)

	v.SetDefault("auth.session_timeout", 5*time.Second)
	v.SetDefault("auth.profile_timeout", 10*time.Second)
	v.SetDefault("auth.refresh_schedule", "0 */30 * * * *")

	v.SetDefault("journal.page_size", 10)
	v.SetDefault("journal.starting_equity", 100)
	v.SetDefault("journal.timezone", "")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "journal.db")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("server.port", 8080)
}
